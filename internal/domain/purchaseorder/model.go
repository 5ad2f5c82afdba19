// Package purchaseorder implements the purchase-order document: a planned
// purchase built from aggregated pending demand, which sweeps the orders it
// accounted for and later spawns an actual purchase.
package purchaseorder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/entity"
	"verduleria/internal/core/types"
)

// Status is the purchase-order lifecycle state.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) valid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PurchaseOrder is the document header.
type PurchaseOrder struct {
	entity.Document
	Status Status `db:"status" json:"status"`

	// SweptOrderIDs is the demand snapshot: the client orders this
	// document moved into in_purchasing at creation time.
	SweptOrderIDs []int64 `db:"swept_order_ids" json:"sweptOrderIds"`

	// EstimatedTotal is priced from the latest purchase-price history at
	// creation; lines without history contribute zero.
	EstimatedTotal types.Money `db:"estimated_total" json:"estimatedTotal"`

	Lines []Line `db:"-" json:"lines,omitempty"`
}

// Line is one planned purchase line.
type Line struct {
	LineID          uuid.UUID      `db:"line_id" json:"lineId"`
	PurchaseOrderID int64          `db:"purchase_order_id" json:"purchaseOrderId"`
	LineNo          int            `db:"line_no" json:"lineNo"`
	ProductUnitID   int64          `db:"product_unit_id" json:"productUnitId"`
	SuggestedQty    types.Quantity `db:"suggested_qty" json:"suggestedQty"`

	// PurchasedQty is filled when the spawned purchase is confirmed.
	PurchasedQty *types.Quantity `db:"purchased_qty" json:"purchasedQty,omitempty"`

	// EstimatedPrice is the latest historical cost, nil when never bought.
	EstimatedPrice *types.Money `db:"estimated_price" json:"estimatedPrice,omitempty"`

	// Unresolved carries over from the suggestion that produced the line.
	Unresolved bool `db:"unresolved" json:"unresolved"`
}

// NewPurchaseOrder creates a draft purchase order.
func NewPurchaseOrder() *PurchaseOrder {
	return &PurchaseOrder{
		Document:       entity.NewDocument(),
		Status:         StatusDraft,
		SweptOrderIDs:  make([]int64, 0),
		EstimatedTotal: decimal.Zero,
		Lines:          make([]Line, 0),
	}
}

// RecalculateEstimatedTotal updates the header total from priced lines.
func (po *PurchaseOrder) RecalculateEstimatedTotal() {
	total := decimal.Zero
	for _, line := range po.Lines {
		if line.EstimatedPrice != nil {
			total = total.Add(line.SuggestedQty.Mul(*line.EstimatedPrice))
		}
	}
	po.EstimatedTotal = total
}

// Validate implements entity.Validatable.
func (po *PurchaseOrder) Validate(ctx context.Context) error {
	if !po.Status.valid() {
		return apperror.NewValidation("invalid purchase order status").
			WithDetail("status", string(po.Status))
	}
	for i, line := range po.Lines {
		if line.ProductUnitID == 0 {
			return apperror.NewValidation("product unit is required").
				WithDetail("lineNo", i+1)
		}
		if !line.SuggestedQty.IsPositive() {
			return apperror.NewValidation("suggested quantity must be positive").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// PrintModel is the flattened document handed to the print layer.
type PrintModel struct {
	Number         string           `json:"number"`
	Date           time.Time        `json:"date"`
	Status         Status           `json:"status"`
	EstimatedTotal types.Money      `json:"estimatedTotal"`
	Lines          []PrintModelLine `json:"lines"`
}

// PrintModelLine is one printable line with resolved names.
type PrintModelLine struct {
	LineNo         int             `json:"lineNo"`
	ProductName    string          `json:"productName"`
	Supplier       *string         `json:"supplier,omitempty"`
	UnitName       string          `json:"unitName"`
	SuggestedQty   types.Quantity  `json:"suggestedQty"`
	PurchasedQty   *types.Quantity `json:"purchasedQty,omitempty"`
	EstimatedPrice *types.Money    `json:"estimatedPrice,omitempty"`
	Unresolved     bool            `json:"unresolved"`
}

// --- Status transitions ---

// Confirm moves the order from draft to confirmed, freezing its lines.
func (po *PurchaseOrder) Confirm() error {
	if len(po.Lines) == 0 {
		return apperror.NewValidation("cannot confirm purchase order without lines")
	}
	return po.transition(StatusConfirmed, StatusDraft)
}

// MarkInProgress records that a purchase document now exists for this order.
func (po *PurchaseOrder) MarkInProgress() error {
	return po.transition(StatusInProgress, StatusConfirmed)
}

// MarkCompleted records that the spawned purchase was confirmed.
func (po *PurchaseOrder) MarkCompleted() error {
	return po.transition(StatusCompleted, StatusInProgress)
}

// RevertToConfirmed undoes MarkInProgress when the purchase is cancelled.
func (po *PurchaseOrder) RevertToConfirmed() error {
	return po.transition(StatusConfirmed, StatusInProgress)
}

// Cancel is legal from draft and confirmed. Once a purchase has been
// spawned the order follows that purchase's lifecycle instead.
func (po *PurchaseOrder) Cancel() error {
	return po.transition(StatusCancelled, StatusDraft, StatusConfirmed)
}

// Editable reports whether lines may still be changed.
func (po *PurchaseOrder) Editable() bool {
	return po.Status == StatusDraft
}

func (po *PurchaseOrder) transition(to Status, from ...Status) error {
	for _, f := range from {
		if po.Status == f {
			po.Status = to
			po.Touch()
			return nil
		}
	}
	return apperror.NewInvalidState(
		fmt.Sprintf("purchase order cannot move from %s to %s", po.Status, to)).
		WithDetail("purchase_order_id", po.ID).
		WithDetail("status", string(po.Status))
}
