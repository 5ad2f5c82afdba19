// Package product provides the Product catalog.
// Products are the goods the business distributes (tomatoes, lettuce, ...).
package product

import (
	"context"

	"verduleria/internal/core/entity"
)

// Product represents a distributed good.
type Product struct {
	entity.Catalog

	// Supplier is the habitual supplier's name (optional)
	Supplier *string `db:"supplier" json:"supplier,omitempty"`
}

// NewProduct creates a new Product.
func NewProduct(name string) *Product {
	return &Product{
		Catalog: entity.NewCatalog(name),
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	return p.Catalog.Validate(ctx)
}
