// Package deliverynote implements the delivery note (remito): the document
// that fixes a client order's sale prices and, on delivery confirmation,
// subtracts the delivered quantities from stock.
package deliverynote

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/entity"
	"verduleria/internal/core/types"
)

// DeliveryNote is the document header. At most one note exists per order.
type DeliveryNote struct {
	entity.Document

	OrderID  int64 `db:"order_id" json:"orderId"`
	ClientID int64 `db:"client_id" json:"clientId"`

	// Delivered flips when the physical delivery is confirmed;
	// that is the moment stock leaves.
	Delivered   bool       `db:"delivered" json:"delivered"`
	DeliveredAt *time.Time `db:"delivered_at" json:"deliveredAt,omitempty"`

	Total types.Money `db:"total" json:"total"`

	Lines []Line `db:"-" json:"lines,omitempty"`
}

// Line prices one order line.
type Line struct {
	LineID         uuid.UUID      `db:"line_id" json:"lineId"`
	DeliveryNoteID int64          `db:"delivery_note_id" json:"deliveryNoteId"`
	OrderLineID    uuid.UUID      `db:"order_line_id" json:"orderLineId"`
	LineNo         int            `db:"line_no" json:"lineNo"`
	ProductUnitID  int64          `db:"product_unit_id" json:"productUnitId"`
	Quantity       types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice      types.Money    `db:"unit_price" json:"unitPrice"`
	Subtotal       types.Money    `db:"subtotal" json:"subtotal"`
}

// NewDeliveryNote creates an undelivered note for an order.
func NewDeliveryNote(orderID, clientID int64) *DeliveryNote {
	return &DeliveryNote{
		Document: entity.NewDocument(),
		OrderID:  orderID,
		ClientID: clientID,
		Total:    decimal.Zero,
		Lines:    make([]Line, 0),
	}
}

// RecalculateTotal refreshes line subtotals and the header total.
func (dn *DeliveryNote) RecalculateTotal() {
	total := decimal.Zero
	for i := range dn.Lines {
		line := &dn.Lines[i]
		line.Subtotal = line.Quantity.Mul(line.UnitPrice)
		total = total.Add(line.Subtotal)
	}
	dn.Total = total
}

// MarkDelivered confirms the physical delivery.
func (dn *DeliveryNote) MarkDelivered() error {
	if dn.Delivered {
		return apperror.NewInvalidState("delivery note is already delivered").
			WithDetail("delivery_note_id", dn.ID)
	}
	now := time.Now().UTC()
	dn.Delivered = true
	dn.DeliveredAt = &now
	dn.Touch()
	return nil
}

// Validate implements entity.Validatable.
func (dn *DeliveryNote) Validate(ctx context.Context) error {
	if dn.OrderID == 0 {
		return apperror.NewValidation("order is required").
			WithDetail("field", "orderId")
	}
	if dn.ClientID == 0 {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}
	if len(dn.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, line := range dn.Lines {
		if line.ProductUnitID == 0 {
			return apperror.NewValidation("product unit is required").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// SuggestedPrice is the pricing aid shown when issuing a note.
type SuggestedPrice struct {
	OrderLineID   uuid.UUID      `json:"orderLineId"`
	ProductUnitID int64          `json:"productUnitId"`
	Quantity      types.Quantity `json:"quantity"`

	// LastCost is the latest purchase price, zero when never bought.
	LastCost types.Money `json:"lastCost"`

	// Suggested = LastCost * (1 + margin/100).
	Suggested types.Money `json:"suggested"`

	// LastClientPrice is what this client paid last time, nil when never sold.
	LastClientPrice *types.Money `json:"lastClientPrice,omitempty"`
}

// PrintModel is the flattened document handed to the print layer.
type PrintModel struct {
	Number      string           `json:"number"`
	Date        time.Time        `json:"date"`
	OrderNumber string           `json:"orderNumber"`
	ClientName  string           `json:"clientName"`
	ClientPhone *string          `json:"clientPhone,omitempty"`
	Delivered   bool             `json:"delivered"`
	Total       types.Money      `json:"total"`
	Lines       []PrintModelLine `json:"lines"`
}

// PrintModelLine is one printable line with resolved names.
type PrintModelLine struct {
	LineNo      int            `json:"lineNo"`
	ProductName string         `json:"productName"`
	UnitName    string         `json:"unitName"`
	Quantity    types.Quantity `json:"quantity"`
	UnitPrice   types.Money    `json:"unitPrice"`
	Subtotal    types.Money    `json:"subtotal"`
}
