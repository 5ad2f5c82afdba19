package purchase

import (
	"context"
)

// ListFilter narrows List results.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

// Repository persists purchase documents.
type Repository interface {
	Create(ctx context.Context, p *Purchase) error

	// Update saves the header with optimistic-lock version check.
	Update(ctx context.Context, p *Purchase) error

	// SaveLines replaces the document's lines.
	SaveLines(ctx context.Context, purchaseID int64, lines []Line) error

	GetByID(ctx context.Context, id int64) (*Purchase, error)

	GetLines(ctx context.Context, purchaseID int64) ([]Line, error)

	// GetByPurchaseOrder finds the purchase spawned from a purchase order,
	// apperror.CodeNotFound when none exists.
	GetByPurchaseOrder(ctx context.Context, poID int64) (*Purchase, error)

	List(ctx context.Context, filter ListFilter) ([]*Purchase, error)
}
