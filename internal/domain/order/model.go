// Package order provides the ClientOrder document (pedido) and its lifecycle.
package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/entity"
	"verduleria/internal/core/types"
)

// Status is the lifecycle state of a client order.
type Status string

const (
	StatusPending      Status = "pending"
	StatusInPurchasing Status = "in_purchasing"
	StatusInProgress   Status = "in_progress"
	StatusPartial      Status = "partial"
	StatusCompleted    Status = "completed"
)

// valid reports whether s is a known status.
func (s Status) valid() bool {
	switch s {
	case StatusPending, StatusInPurchasing, StatusInProgress, StatusPartial, StatusCompleted:
		return true
	}
	return false
}

// ClientOrder represents a client's order (pedido).
type ClientOrder struct {
	entity.Document

	ClientID int64  `db:"client_id" json:"clientId"`
	Status   Status `db:"status" json:"status"`

	// Total is denormalized from lines with known prices
	Total types.Money `db:"total" json:"total"`

	// Table part: ordered items
	Lines []Line `db:"-" json:"lines"`
}

// Line represents one ordered item.
type Line struct {
	LineID uuid.UUID `db:"line_id" json:"lineId"`
	LineNo int       `db:"line_no" json:"lineNo"`

	ProductUnitID int64 `db:"product_unit_id" json:"productUnitId"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// UnitPrice and Subtotal are set when the delivery note fixes prices
	UnitPrice *types.Money `db:"unit_price" json:"unitPrice,omitempty"`
	Subtotal  *types.Money `db:"subtotal" json:"subtotal,omitempty"`
}

// NewClientOrder creates a pending order for a client.
func NewClientOrder(clientID int64) *ClientOrder {
	return &ClientOrder{
		Document: entity.NewDocument(),
		ClientID: clientID,
		Status:   StatusPending,
		Total:    decimal.Zero,
		Lines:    make([]Line, 0),
	}
}

// AddLine appends an ordered item and recalculates the total.
func (o *ClientOrder) AddLine(productUnitID int64, qty types.Quantity) {
	o.Lines = append(o.Lines, Line{
		LineID:        uuid.New(),
		LineNo:        len(o.Lines) + 1,
		ProductUnitID: productUnitID,
		Quantity:      qty,
	})
	o.RecalculateTotal()
}

// RecalculateTotal updates the denormalized total from priced lines.
func (o *ClientOrder) RecalculateTotal() {
	total := decimal.Zero
	for i := range o.Lines {
		line := &o.Lines[i]
		if line.UnitPrice != nil {
			sub := line.Quantity.Mul(*line.UnitPrice)
			line.Subtotal = &sub
			total = total.Add(sub)
		}
	}
	o.Total = total
}

// Validate implements entity.Validatable.
func (o *ClientOrder) Validate(ctx context.Context) error {
	if o.ClientID == 0 {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}
	if !o.Status.valid() {
		return apperror.NewValidation("invalid order status").
			WithDetail("status", string(o.Status))
	}
	if len(o.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, line := range o.Lines {
		if line.ProductUnitID == 0 {
			return apperror.NewValidation("product unit is required").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// --- Status transitions ---
// Transition funcs are the only mutators of Status; they centralize the
// legality checks of the state machine.

// MarkInPurchasing flips a pending order into a purchase run.
func (o *ClientOrder) MarkInPurchasing() error {
	return o.transition(StatusInPurchasing, StatusPending)
}

// RevertToPending returns an order to the pending pool
// (purchase-order cancellation, delivery-note void).
func (o *ClientOrder) RevertToPending() error {
	return o.transition(StatusPending, StatusInPurchasing, StatusInProgress)
}

// MarkInProgress records that a delivery note was issued for the order.
func (o *ClientOrder) MarkInProgress() error {
	return o.transition(StatusInProgress, StatusPending, StatusInPurchasing, StatusPartial)
}

// MarkPartial records a partial fulfillment.
func (o *ClientOrder) MarkPartial() error {
	return o.transition(StatusPartial, StatusInProgress)
}

// MarkCompleted closes the order after delivery confirmation.
func (o *ClientOrder) MarkCompleted() error {
	return o.transition(StatusCompleted, StatusInProgress, StatusPartial)
}

func (o *ClientOrder) transition(to Status, from ...Status) error {
	for _, f := range from {
		if o.Status == f {
			o.Status = to
			o.Touch()
			return nil
		}
	}
	return apperror.NewInvalidState(
		fmt.Sprintf("order cannot move from %s to %s", o.Status, to)).
		WithDetail("order_id", o.ID).
		WithDetail("status", string(o.Status))
}
