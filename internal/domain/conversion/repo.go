package conversion

import (
	"context"
)

// Repository defines the interface for Conversion persistence.
// Pair maintenance (edge + inverse) is the service's responsibility; the
// repository only stores directed rows.
type Repository interface {
	// Create inserts an edge and assigns its generated ID
	Create(ctx context.Context, c *Conversion) error

	// GetByID retrieves an edge by ID
	GetByID(ctx context.Context, id int64) (*Conversion, error)

	// GetEdge retrieves the direct edge for (product, origin, dest)
	GetEdge(ctx context.Context, productID, originUnitID, destUnitID int64) (*Conversion, error)

	// UpdateFactor rewrites an edge's factor
	UpdateFactor(ctx context.Context, id int64, factor string) error

	// Delete removes an edge
	Delete(ctx context.Context, id int64) error

	// ListByProduct retrieves all edges of a product
	ListByProduct(ctx context.Context, productID int64) ([]*Conversion, error)
}
