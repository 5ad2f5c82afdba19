package order

import (
	"context"
	"testing"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/types"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		move    func(*ClientOrder) error
		want    Status
		wantErr bool
	}{
		{"pending to in_purchasing", StatusPending, (*ClientOrder).MarkInPurchasing, StatusInPurchasing, false},
		{"in_purchasing back to pending", StatusInPurchasing, (*ClientOrder).RevertToPending, StatusPending, false},
		{"in_progress back to pending on void", StatusInProgress, (*ClientOrder).RevertToPending, StatusPending, false},
		{"pending to in_progress", StatusPending, (*ClientOrder).MarkInProgress, StatusInProgress, false},
		{"in_purchasing to in_progress", StatusInPurchasing, (*ClientOrder).MarkInProgress, StatusInProgress, false},
		{"in_progress to completed", StatusInProgress, (*ClientOrder).MarkCompleted, StatusCompleted, false},
		{"partial to completed", StatusPartial, (*ClientOrder).MarkCompleted, StatusCompleted, false},
		{"completed is terminal", StatusCompleted, (*ClientOrder).MarkInProgress, StatusCompleted, true},
		{"completed cannot revert", StatusCompleted, (*ClientOrder).RevertToPending, StatusCompleted, true},
		{"pending cannot complete", StatusPending, (*ClientOrder).MarkCompleted, StatusPending, true},
		{"in_purchasing cannot double-sweep", StatusInPurchasing, (*ClientOrder).MarkInPurchasing, StatusInPurchasing, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewClientOrder(1)
			o.Status = tt.from

			err := tt.move(o)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected transition error, got none")
				}
				if !apperror.IsInvalidState(err) {
					t.Errorf("expected InvalidState, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("transition failed: %v", err)
			}
			if o.Status != tt.want {
				t.Errorf("status = %s, want %s", o.Status, tt.want)
			}
		})
	}
}

func TestTransition_BumpsVersion(t *testing.T) {
	o := NewClientOrder(1)
	before := o.Version

	if err := o.MarkInPurchasing(); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if o.Version != before+1 {
		t.Errorf("version = %d, want %d", o.Version, before+1)
	}
}

func TestRecalculateTotal_OnlyPricedLines(t *testing.T) {
	o := NewClientOrder(1)
	o.AddLine(101, types.MustQuantity("3"))
	o.AddLine(102, types.MustQuantity("2"))

	if !o.Total.IsZero() {
		t.Fatalf("unpriced order total = %s, want 0", o.Total)
	}

	price := types.MustMoney("150.50")
	o.Lines[0].UnitPrice = &price
	o.RecalculateTotal()

	if want := types.MustMoney("451.50"); !o.Total.Equal(want) {
		t.Errorf("total = %s, want %s", o.Total, want)
	}
	if o.Lines[0].Subtotal == nil || !o.Lines[0].Subtotal.Equal(types.MustMoney("451.50")) {
		t.Errorf("priced line subtotal not set")
	}
	if o.Lines[1].Subtotal != nil {
		t.Errorf("unpriced line got a subtotal")
	}
}

func TestAddLine_NumbersSequentially(t *testing.T) {
	o := NewClientOrder(1)
	o.AddLine(101, types.MustQuantity("1"))
	o.AddLine(102, types.MustQuantity("2"))

	if o.Lines[0].LineNo != 1 || o.Lines[1].LineNo != 2 {
		t.Errorf("line numbers = %d, %d; want 1, 2", o.Lines[0].LineNo, o.Lines[1].LineNo)
	}
	if o.Lines[0].LineID == o.Lines[1].LineID {
		t.Errorf("line ids must be unique")
	}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*ClientOrder)
		wantErr bool
	}{
		{"valid", func(o *ClientOrder) {}, false},
		{"no client", func(o *ClientOrder) { o.ClientID = 0 }, true},
		{"no lines", func(o *ClientOrder) { o.Lines = nil }, true},
		{"zero quantity", func(o *ClientOrder) { o.Lines[0].Quantity = types.Zero() }, true},
		{"negative quantity", func(o *ClientOrder) { o.Lines[0].Quantity = types.MustQuantity("-1") }, true},
		{"missing product unit", func(o *ClientOrder) { o.Lines[0].ProductUnitID = 0 }, true},
		{"unknown status", func(o *ClientOrder) { o.Status = Status("shipped") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewClientOrder(1)
			o.AddLine(101, types.MustQuantity("5"))
			tt.mutate(o)

			err := o.Validate(ctx)
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
