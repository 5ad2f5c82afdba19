package dto

import (
	"github.com/shopspring/decimal"

	"verduleria/internal/domain/productunit"
)

// ProductUnitResponse is the API shape of a product-unit binding.
type ProductUnitResponse struct {
	ID             int64           `json:"id"`
	ProductID      int64           `json:"productId"`
	UnitID         int64           `json:"unitId"`
	Margin         decimal.Decimal `json:"margin"`
	Stock          decimal.Decimal `json:"stock"`
	IsPurchaseUnit bool            `json:"isPurchaseUnit"`
	IsSaleUnit     bool            `json:"isSaleUnit"`
	Version        int             `json:"version"`
}

// FromProductUnit maps a binding entity to its response.
func FromProductUnit(pu *productunit.ProductUnit) ProductUnitResponse {
	return ProductUnitResponse{
		ID:             pu.ID,
		ProductID:      pu.ProductID,
		UnitID:         pu.UnitID,
		Margin:         pu.Margin,
		Stock:          pu.Stock,
		IsPurchaseUnit: pu.IsPurchaseUnit,
		IsSaleUnit:     pu.IsSaleUnit,
		Version:        pu.Version,
	}
}

// FromProductUnits maps a slice of bindings.
func FromProductUnits(pus []*productunit.ProductUnit) []ProductUnitResponse {
	out := make([]ProductUnitResponse, len(pus))
	for i, pu := range pus {
		out[i] = FromProductUnit(pu)
	}
	return out
}

// EnsureBindingRequest creates (or returns) a product-unit binding.
type EnsureBindingRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	UnitID    int64 `json:"unitId" binding:"required"`
}

// SetMarginRequest updates the sale margin percentage.
type SetMarginRequest struct {
	Margin decimal.Decimal `json:"margin" binding:"required"`
}
