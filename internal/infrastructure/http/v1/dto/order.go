package dto

import (
	"github.com/shopspring/decimal"
)

// OrderLineRequest is one requested item.
type OrderLineRequest struct {
	ProductUnitID int64           `json:"productUnitId" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
}

// CreateOrderRequest registers a client order.
type CreateOrderRequest struct {
	ClientID int64              `json:"clientId" binding:"required"`
	Lines    []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}
