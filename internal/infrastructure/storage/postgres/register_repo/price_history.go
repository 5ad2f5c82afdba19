package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/types"
	"verduleria/internal/infrastructure/storage/postgres"
)

const (
	purchasePricesTable = "purchase_price_history"
	clientPricesTable   = "client_price_history"
)

// PriceHistoryRepo implements pricehistory.Repository.
type PriceHistoryRepo struct {
	txManager *postgres.TxManager
}

// NewPriceHistoryRepo creates a price history repository.
func NewPriceHistoryRepo(txManager *postgres.TxManager) *PriceHistoryRepo {
	return &PriceHistoryRepo{txManager: txManager}
}

func (r *PriceHistoryRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *PriceHistoryRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// AddPurchasePrice records the confirmed cost of a product unit.
func (r *PriceHistoryRepo) AddPurchasePrice(ctx context.Context, productUnitID, purchaseID int64, price types.Money) error {
	q := r.builder().
		Insert(purchasePricesTable).
		Columns("product_unit_id", "purchase_id", "price", "recorded_at").
		Values(productUnitID, purchaseID, price, squirrel.Expr("NOW()"))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase price: %w", err)
	}
	return nil
}

// LatestPurchasePrice returns the most recent recorded cost for the unit.
func (r *PriceHistoryRepo) LatestPurchasePrice(ctx context.Context, productUnitID int64) (types.Money, error) {
	q := r.builder().
		Select("price").
		From(purchasePricesTable).
		Where(squirrel.Eq{"product_unit_id": productUnitID}).
		OrderBy("recorded_at DESC", "id DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var price types.Money
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&price)
	if err != nil {
		if isNoRows(err) {
			return types.Zero(), apperror.NewNotFound(purchasePricesTable, productUnitID)
		}
		return types.Zero(), fmt.Errorf("latest purchase price: %w", err)
	}
	return price, nil
}

// LatestPurchasePrices resolves many product units at once; units with no
// history are absent from the result map.
func (r *PriceHistoryRepo) LatestPurchasePrices(ctx context.Context, productUnitIDs []int64) (map[int64]types.Money, error) {
	out := make(map[int64]types.Money, len(productUnitIDs))
	if len(productUnitIDs) == 0 {
		return out, nil
	}

	q := r.builder().
		Select("DISTINCT ON (product_unit_id) product_unit_id", "price").
		From(purchasePricesTable).
		Where(squirrel.Eq{"product_unit_id": productUnitIDs}).
		OrderBy("product_unit_id", "recorded_at DESC", "id DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.querier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("latest purchase prices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var puID int64
		var price types.Money
		if err := rows.Scan(&puID, &price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		out[puID] = price
	}
	return out, rows.Err()
}

// AddClientPrice records the price charged on a delivery note line.
func (r *PriceHistoryRepo) AddClientPrice(ctx context.Context, clientID, productUnitID, deliveryNoteID int64, price types.Money) error {
	q := r.builder().
		Insert(clientPricesTable).
		Columns("client_id", "product_unit_id", "delivery_note_id", "price", "recorded_at").
		Values(clientID, productUnitID, deliveryNoteID, price, squirrel.Expr("NOW()"))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert client price: %w", err)
	}
	return nil
}

// LatestClientPrice returns the last price charged to the client for the
// product unit, excluding a delivery note when excludeNoteID > 0.
func (r *PriceHistoryRepo) LatestClientPrice(ctx context.Context, clientID, productUnitID int64, excludeNoteID int64) (types.Money, error) {
	q := r.builder().
		Select("price").
		From(clientPricesTable).
		Where(squirrel.Eq{"client_id": clientID}).
		Where(squirrel.Eq{"product_unit_id": productUnitID}).
		OrderBy("recorded_at DESC", "id DESC").
		Limit(1)

	if excludeNoteID > 0 {
		q = q.Where(squirrel.NotEq{"delivery_note_id": excludeNoteID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var price types.Money
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&price)
	if err != nil {
		if isNoRows(err) {
			return types.Zero(), apperror.NewNotFound(clientPricesTable, productUnitID)
		}
		return types.Zero(), fmt.Errorf("latest client price: %w", err)
	}
	return price, nil
}

// DeleteByDeliveryNote removes all client price rows written by a note.
func (r *PriceHistoryRepo) DeleteByDeliveryNote(ctx context.Context, deliveryNoteID int64) error {
	q := r.builder().
		Delete(clientPricesTable).
		Where(squirrel.Eq{"delivery_note_id": deliveryNoteID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete client prices: %w", err)
	}
	return nil
}
