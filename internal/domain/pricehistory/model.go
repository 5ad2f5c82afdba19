// Package pricehistory records the prices at which product units were last
// bought (per supplier purchase) and last sold (per client delivery).
package pricehistory

import (
	"time"

	"verduleria/internal/core/types"
)

// PurchasePrice is one recorded cost of a product unit at purchase
// confirmation time.
type PurchasePrice struct {
	ID            int64       `db:"id" json:"id"`
	ProductUnitID int64       `db:"product_unit_id" json:"productUnitId"`
	PurchaseID    int64       `db:"purchase_id" json:"purchaseId"`
	Price         types.Money `db:"price" json:"price"`
	RecordedAt    time.Time   `db:"recorded_at" json:"recordedAt"`
}

// ClientPrice is one price charged to a client for a product unit on a
// delivery note.
type ClientPrice struct {
	ID             int64       `db:"id" json:"id"`
	ClientID       int64       `db:"client_id" json:"clientId"`
	ProductUnitID  int64       `db:"product_unit_id" json:"productUnitId"`
	DeliveryNoteID int64       `db:"delivery_note_id" json:"deliveryNoteId"`
	Price          types.Money `db:"price" json:"price"`
	RecordedAt     time.Time   `db:"recorded_at" json:"recordedAt"`
}
