package deliverynote

import (
	"context"
)

// Repository persists delivery notes.
type Repository interface {
	Create(ctx context.Context, dn *DeliveryNote) error

	// Update saves the header with optimistic-lock version check.
	Update(ctx context.Context, dn *DeliveryNote) error

	SaveLines(ctx context.Context, noteID int64, lines []Line) error

	GetByID(ctx context.Context, id int64) (*DeliveryNote, error)

	// GetByOrder finds the note issued for an order,
	// apperror.CodeNotFound when none exists.
	GetByOrder(ctx context.Context, orderID int64) (*DeliveryNote, error)

	GetLines(ctx context.Context, noteID int64) ([]Line, error)

	// Delete removes the note and its lines. Only used by Void.
	Delete(ctx context.Context, id int64) error

	// GetPrintModel assembles the printable document with client, order
	// and catalog names resolved.
	GetPrintModel(ctx context.Context, id int64) (*PrintModel, error)

	List(ctx context.Context, limit, offset int) ([]*DeliveryNote, error)
}
