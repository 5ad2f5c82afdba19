package pricehistory

import (
	"context"

	"verduleria/internal/core/types"
)

// Repository persists purchase and client price history rows.
// Writes happen inside the caller's transaction.
type Repository interface {
	// AddPurchasePrice records the confirmed cost of a product unit.
	AddPurchasePrice(ctx context.Context, productUnitID, purchaseID int64, price types.Money) error

	// LatestPurchasePrice returns the most recent recorded cost for the
	// product unit, or apperror.CodeNotFound when none exists.
	LatestPurchasePrice(ctx context.Context, productUnitID int64) (types.Money, error)

	// LatestPurchasePrices resolves many product units at once; units with
	// no history are absent from the result map.
	LatestPurchasePrices(ctx context.Context, productUnitIDs []int64) (map[int64]types.Money, error)

	// AddClientPrice records the price charged on a delivery note line.
	AddClientPrice(ctx context.Context, clientID, productUnitID, deliveryNoteID int64, price types.Money) error

	// LatestClientPrice returns the last price charged to the client for the
	// product unit, excluding rows from the given delivery note when
	// excludeNoteID > 0. Returns apperror.CodeNotFound when none exists.
	LatestClientPrice(ctx context.Context, clientID, productUnitID int64, excludeNoteID int64) (types.Money, error)

	// DeleteByDeliveryNote removes all client price rows written by a
	// delivery note. Used when the note is voided.
	DeleteByDeliveryNote(ctx context.Context, deliveryNoteID int64) error
}
