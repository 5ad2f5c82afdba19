// Package conversion provides the per-product unit-conversion graph.
//
// Each logical conversion is stored as a pair of directed edges kept in
// lock-step: writing (origin→dest, f) always writes (dest→origin, 1/f) in the
// same transaction. The pair is never exposed as independently mutable rows.
package conversion

import (
	"context"

	"github.com/shopspring/decimal"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/entity"
	"verduleria/internal/core/types"
)

// Conversion is a directed edge: 1 origin unit = Factor destination units.
type Conversion struct {
	entity.BaseEntity

	ProductID    int64 `db:"product_id" json:"productId"`
	OriginUnitID int64 `db:"origin_unit_id" json:"originUnitId"`
	DestUnitID   int64 `db:"dest_unit_id" json:"destUnitId"`

	Factor types.Quantity `db:"factor" json:"factor"`
}

// NewConversion creates a directed edge.
func NewConversion(productID, originUnitID, destUnitID int64, factor types.Quantity) *Conversion {
	return &Conversion{
		BaseEntity:   entity.NewBaseEntity(),
		ProductID:    productID,
		OriginUnitID: originUnitID,
		DestUnitID:   destUnitID,
		Factor:       factor,
	}
}

// Validate implements entity.Validatable.
func (c *Conversion) Validate(ctx context.Context) error {
	if c.ProductID == 0 {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if c.OriginUnitID == 0 || c.DestUnitID == 0 {
		return apperror.NewValidation("origin and destination units are required")
	}
	if c.OriginUnitID == c.DestUnitID {
		return apperror.NewValidation("origin and destination units must differ").
			WithDetail("unit_id", c.OriginUnitID)
	}
	if !c.Factor.IsPositive() {
		return apperror.NewValidation("factor must be positive").
			WithDetail("factor", c.Factor.String())
	}
	return nil
}

// InverseFactor returns 1/Factor with enough precision for round-trips.
func (c *Conversion) InverseFactor() types.Quantity {
	return decimal.NewFromInt(1).DivRound(c.Factor, 12)
}

// Apply converts a quantity expressed in the origin unit to the destination unit.
func (c *Conversion) Apply(qty types.Quantity) types.Quantity {
	return qty.Mul(c.Factor)
}
