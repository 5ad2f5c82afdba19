package dto

import (
	"github.com/shopspring/decimal"

	"verduleria/internal/domain/conversion"
)

// ConversionResponse is the API shape of a conversion edge.
type ConversionResponse struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"productId"`
	OriginUnitID int64           `json:"originUnitId"`
	DestUnitID   int64           `json:"destUnitId"`
	Factor       decimal.Decimal `json:"factor"`
}

// FromConversion maps a conversion entity to its response.
func FromConversion(c *conversion.Conversion) ConversionResponse {
	return ConversionResponse{
		ID:           c.ID,
		ProductID:    c.ProductID,
		OriginUnitID: c.OriginUnitID,
		DestUnitID:   c.DestUnitID,
		Factor:       c.Factor,
	}
}

// FromConversions maps a slice of conversion edges.
func FromConversions(cs []*conversion.Conversion) []ConversionResponse {
	out := make([]ConversionResponse, len(cs))
	for i, c := range cs {
		out[i] = FromConversion(c)
	}
	return out
}

// CreateConversionRequest registers a conversion pair.
type CreateConversionRequest struct {
	ProductID    int64           `json:"productId" binding:"required"`
	OriginUnitID int64           `json:"originUnitId" binding:"required"`
	DestUnitID   int64           `json:"destUnitId" binding:"required"`
	Factor       decimal.Decimal `json:"factor" binding:"required"`
}

// UpdateConversionRequest changes a conversion factor.
type UpdateConversionRequest struct {
	Factor decimal.Decimal `json:"factor" binding:"required"`
}

// ConvertResponse is the result of a quantity conversion.
type ConvertResponse struct {
	ProductID    int64           `json:"productId"`
	OriginUnitID int64           `json:"originUnitId"`
	DestUnitID   int64           `json:"destUnitId"`
	Quantity     decimal.Decimal `json:"quantity"`
	Converted    decimal.Decimal `json:"converted"`
}
