// Package productunit provides the ProductUnit binding: one product measured
// in one unit, carrying its own stock and margin. This is the stock-keeping
// unit every order, purchase and conversion ultimately references.
package productunit

import (
	"context"

	"github.com/shopspring/decimal"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/entity"
	"verduleria/internal/core/types"
)

// DefaultMargin is the sale margin percentage applied when a binding is
// auto-created by the conversion graph.
var DefaultMargin = decimal.NewFromInt(50)

// ProductUnit binds a product to a measurement unit.
type ProductUnit struct {
	entity.BaseEntity

	ProductID int64 `db:"product_id" json:"productId"`
	UnitID    int64 `db:"unit_id" json:"unitId"`

	// Margin is the sale margin percentage over the last purchase cost
	Margin types.Money `db:"margin" json:"margin"`

	// Stock is the current stock quantity in this unit (never negative).
	// Mutated exclusively by purchase confirmation and delivery confirmation.
	Stock types.Quantity `db:"stock" json:"stock"`

	// IsPurchaseUnit marks the canonical unit for supplier purchases
	// (at most one per product)
	IsPurchaseUnit bool `db:"is_purchase_unit" json:"isPurchaseUnit"`

	// IsSaleUnit marks units offered to clients (may be many)
	IsSaleUnit bool `db:"is_sale_unit" json:"isSaleUnit"`
}

// NewProductUnit creates a binding with default margin, zero stock and
// sale flag set.
func NewProductUnit(productID, unitID int64) *ProductUnit {
	return &ProductUnit{
		BaseEntity: entity.NewBaseEntity(),
		ProductID:  productID,
		UnitID:     unitID,
		Margin:     DefaultMargin,
		Stock:      decimal.Zero,
		IsSaleUnit: true,
	}
}

// Validate implements entity.Validatable.
func (pu *ProductUnit) Validate(ctx context.Context) error {
	if pu.ProductID == 0 {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if pu.UnitID == 0 {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unitId")
	}
	if pu.Margin.IsNegative() {
		return apperror.NewValidation("margin cannot be negative").
			WithDetail("field", "margin")
	}
	if pu.Stock.IsNegative() {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "stock")
	}
	return nil
}

// MarginOrDefault returns the configured margin, or DefaultMargin when unset.
func (pu *ProductUnit) MarginOrDefault() types.Money {
	if pu.Margin.IsZero() {
		return DefaultMargin
	}
	return pu.Margin
}
