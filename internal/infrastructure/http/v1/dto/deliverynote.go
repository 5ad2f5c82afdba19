package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryLinePriceRequest fixes the price of one order line.
type DeliveryLinePriceRequest struct {
	OrderLineID uuid.UUID       `json:"orderLineId" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"required"`
}

// CreateDeliveryNoteRequest prices an order into a delivery note.
type CreateDeliveryNoteRequest struct {
	OrderID int64                      `json:"orderId" binding:"required"`
	Prices  []DeliveryLinePriceRequest `json:"prices" binding:"required,min=1,dive"`
}
