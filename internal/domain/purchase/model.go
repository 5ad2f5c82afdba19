// Package purchase implements the purchase document: the actual supplier
// buy, either spawned from a confirmed purchase order or entered manually.
// Confirming a purchase is the only operation that adds stock.
package purchase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/entity"
	"verduleria/internal/core/types"
)

// Status is the purchase lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Purchase is the document header.
type Purchase struct {
	entity.Document
	Status Status `db:"status" json:"status"`

	// PurchaseOrderID links back to the spawning purchase order;
	// nil for manual purchases.
	PurchaseOrderID *int64 `db:"purchase_order_id" json:"purchaseOrderId,omitempty"`

	// TotalReal is the summed real cost, fixed at confirmation.
	TotalReal types.Money `db:"total_real" json:"totalReal"`

	Lines []Line `db:"-" json:"lines,omitempty"`
}

// Line is one bought item.
type Line struct {
	LineID        uuid.UUID      `db:"line_id" json:"lineId"`
	PurchaseID    int64          `db:"purchase_id" json:"purchaseId"`
	LineNo        int            `db:"line_no" json:"lineNo"`
	ProductUnitID int64          `db:"product_unit_id" json:"productUnitId"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice     types.Money    `db:"unit_price" json:"unitPrice"`
	Subtotal      types.Money    `db:"subtotal" json:"subtotal"`
}

// NewPurchase creates a pending purchase.
func NewPurchase() *Purchase {
	return &Purchase{
		Document:  entity.NewDocument(),
		Status:    StatusPending,
		TotalReal: decimal.Zero,
		Lines:     make([]Line, 0),
	}
}

// AddLine appends a line and recalculates totals.
func (p *Purchase) AddLine(productUnitID int64, qty types.Quantity, price types.Money) {
	p.Lines = append(p.Lines, Line{
		LineID:        uuid.New(),
		LineNo:        len(p.Lines) + 1,
		ProductUnitID: productUnitID,
		Quantity:      qty,
		UnitPrice:     price,
	})
	p.RecalculateTotal()
}

// RecalculateTotal refreshes line subtotals and the header total.
func (p *Purchase) RecalculateTotal() {
	total := decimal.Zero
	for i := range p.Lines {
		line := &p.Lines[i]
		line.Subtotal = line.Quantity.Mul(line.UnitPrice)
		total = total.Add(line.Subtotal)
	}
	p.TotalReal = total
}

// Validate implements entity.Validatable.
func (p *Purchase) Validate(ctx context.Context) error {
	if !p.Status.valid() {
		return apperror.NewValidation("invalid purchase status").
			WithDetail("status", string(p.Status))
	}
	for i, line := range p.Lines {
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

// Confirm fixes the purchase; stock moves only through this transition.
func (p *Purchase) Confirm() error {
	if len(p.Lines) == 0 {
		return apperror.NewValidation("cannot confirm purchase without lines")
	}
	return p.transition(StatusConfirmed, StatusPending)
}

// Cancel aborts a pending purchase. A confirmed purchase already moved
// stock and wrote cost history, so it cannot be cancelled.
func (p *Purchase) Cancel() error {
	return p.transition(StatusCancelled, StatusPending)
}

// Editable reports whether lines may still be changed.
func (p *Purchase) Editable() bool {
	return p.Status == StatusPending
}

func (p *Purchase) transition(to Status, from ...Status) error {
	for _, f := range from {
		if p.Status == f {
			p.Status = to
			p.Touch()
			return nil
		}
	}
	return apperror.NewInvalidState(
		fmt.Sprintf("purchase cannot move from %s to %s", p.Status, to)).
		WithDetail("purchase_id", p.ID).
		WithDetail("status", string(p.Status))
}
