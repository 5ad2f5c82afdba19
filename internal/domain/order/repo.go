package order

import (
	"context"

	"verduleria/internal/domain"
)

// ListFilter filters order listings.
type ListFilter struct {
	ClientID *int64
	Status   *Status
	Limit    int
	Offset   int
}

// Repository defines the interface for ClientOrder persistence.
type Repository interface {
	// Create inserts the order header and assigns its generated ID
	Create(ctx context.Context, o *ClientOrder) error

	// Update modifies the order header (with optimistic locking)
	Update(ctx context.Context, o *ClientOrder) error

	// SaveLines replaces the order's lines
	SaveLines(ctx context.Context, orderID int64, lines []Line) error

	// GetByID retrieves the order header
	GetByID(ctx context.Context, id int64) (*ClientOrder, error)

	// GetLines retrieves the order's lines sorted by line number
	GetLines(ctx context.Context, orderID int64) ([]Line, error)

	// ListPendingWithLines retrieves every pending order with its lines.
	// This is the aggregation engine's read model.
	ListPendingWithLines(ctx context.Context) ([]*ClientOrder, error)

	// UpdateStatusBulk flips every order in ids currently in from to to,
	// returning the IDs actually flipped
	UpdateStatusBulk(ctx context.Context, ids []int64, from, to Status) ([]int64, error)

	// List retrieves orders with filtering and pagination
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*ClientOrder], error)
}
