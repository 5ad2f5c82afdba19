package purchaseorder

import (
	"context"

	"github.com/google/uuid"

	"verduleria/internal/core/types"
)

// ListFilter narrows List results.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

// Repository persists purchase-order documents.
type Repository interface {
	// Create inserts the header and its lines.
	Create(ctx context.Context, po *PurchaseOrder) error

	// Update saves the header with optimistic-lock version check.
	Update(ctx context.Context, po *PurchaseOrder) error

	// SaveLines replaces the document's lines.
	SaveLines(ctx context.Context, poID int64, lines []Line) error

	// UpdateLinePurchasedQty sets one line's purchased quantity; nil clears it.
	UpdateLinePurchasedQty(ctx context.Context, lineID uuid.UUID, qty *types.Quantity) error

	// GetByID loads the header without lines.
	GetByID(ctx context.Context, id int64) (*PurchaseOrder, error)

	// GetLines loads the document's lines ordered by line number.
	GetLines(ctx context.Context, poID int64) ([]Line, error)

	// GetPrintModel assembles the printable document with product, supplier
	// and unit names resolved.
	GetPrintModel(ctx context.Context, id int64) (*PrintModel, error)

	List(ctx context.Context, filter ListFilter) ([]*PurchaseOrder, error)
}
