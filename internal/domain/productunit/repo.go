package productunit

import (
	"context"

	"verduleria/internal/core/types"
)

// Repository defines the interface for ProductUnit persistence.
type Repository interface {
	// Create inserts a binding and assigns its generated ID
	Create(ctx context.Context, pu *ProductUnit) error

	// GetByID retrieves a binding by ID
	GetByID(ctx context.Context, id int64) (*ProductUnit, error)

	// GetByIDs retrieves several bindings at once
	GetByIDs(ctx context.Context, ids []int64) ([]*ProductUnit, error)

	// GetByProductAndUnit retrieves the binding for a (product, unit) pair
	GetByProductAndUnit(ctx context.Context, productID, unitID int64) (*ProductUnit, error)

	// GetByProduct retrieves all bindings of a product
	GetByProduct(ctx context.Context, productID int64) ([]*ProductUnit, error)

	// GetForUpdate retrieves a binding with a row lock.
	// Must be called within a transaction; stock mutation depends on it.
	GetForUpdate(ctx context.Context, id int64) (*ProductUnit, error)

	// Update modifies margin and flags (never stock) with optimistic locking
	Update(ctx context.Context, pu *ProductUnit) error

	// UpdateStock writes a new stock quantity for a row previously locked
	// with GetForUpdate
	UpdateStock(ctx context.Context, id int64, stock types.Quantity) error

	// HasPurchaseUnit reports whether the product already has a binding
	// flagged as purchase unit
	HasPurchaseUnit(ctx context.Context, productID int64) (bool, error)
}
