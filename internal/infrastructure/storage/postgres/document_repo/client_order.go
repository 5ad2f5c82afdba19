package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"verduleria/internal/domain"
	"verduleria/internal/domain/order"
	"verduleria/internal/infrastructure/storage/postgres"
)

const (
	clientOrdersTable     = "client_orders"
	clientOrderLinesTable = "client_order_lines"
)

var clientOrderLineCols = []string{
	"line_id", "order_id", "line_no", "product_unit_id",
	"quantity", "unit_price", "subtotal",
}

// ClientOrderRepo implements order.Repository.
type ClientOrderRepo struct {
	*BaseDocumentRepo[*order.ClientOrder]
}

// NewClientOrderRepo creates a ClientOrder repository.
func NewClientOrderRepo(txManager *postgres.TxManager) *ClientOrderRepo {
	return &ClientOrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			clientOrdersTable,
			postgres.ExtractDBColumns[order.ClientOrder](),
			func() *order.ClientOrder { return &order.ClientOrder{} },
		),
	}
}

// SaveLines replaces the order's lines.
func (r *ClientOrderRepo) SaveLines(ctx context.Context, orderID int64, lines []order.Line) error {
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{
			l.LineID, orderID, l.LineNo, l.ProductUnitID,
			l.Quantity, l.UnitPrice, l.Subtotal,
		})
	}
	return r.replaceLines(ctx, clientOrderLinesTable, "order_id", orderID, clientOrderLineCols, rows)
}

// GetLines retrieves the order's lines sorted by line number.
func (r *ClientOrderRepo) GetLines(ctx context.Context, orderID int64) ([]order.Line, error) {
	q := r.Builder().
		Select("line_id", "line_no", "product_unit_id", "quantity", "unit_price", "subtotal").
		From(clientOrderLinesTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	lines := make([]order.Line, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}
	return lines, nil
}

// ListPendingWithLines retrieves every pending order with its lines.
func (r *ClientOrderRepo) ListPendingWithLines(ctx context.Context) ([]*order.ClientOrder, error) {
	headers, err := r.SelectMany(ctx, r.baseSelect().
		Where(squirrel.Eq{"status": order.StatusPending}).
		OrderBy("id"))
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return headers, nil
	}

	ids := make([]int64, 0, len(headers))
	byID := make(map[int64]*order.ClientOrder, len(headers))
	for _, h := range headers {
		h.Lines = make([]order.Line, 0)
		ids = append(ids, h.ID)
		byID[h.ID] = h
	}

	q := r.Builder().
		Select("line_id", "order_id", "line_no", "product_unit_id", "quantity", "unit_price", "subtotal").
		From(clientOrderLinesTable).
		Where(squirrel.Eq{"order_id": ids}).
		OrderBy("order_id", "line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	type lineRow struct {
		order.Line
		OrderID int64 `db:"order_id"`
	}
	var rows []lineRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	for _, row := range rows {
		if h, ok := byID[row.OrderID]; ok {
			h.Lines = append(h.Lines, row.Line)
		}
	}
	return headers, nil
}

// UpdateStatusBulk flips every order in ids currently in from to to,
// returning the IDs actually flipped.
func (r *ClientOrderRepo) UpdateStatusBulk(ctx context.Context, ids []int64, from, to order.Status) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := r.Builder().
		Update(clientOrdersTable).
		Set("status", to).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"status": from}).
		Suffix("RETURNING id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	var flipped []int64
	if err := pgxscan.Select(ctx, r.querier(ctx), &flipped, sql, args...); err != nil {
		return nil, fmt.Errorf("bulk status update: %w", err)
	}
	return flipped, nil
}

// List retrieves orders with filtering and pagination.
func (r *ClientOrderRepo) List(ctx context.Context, filter order.ListFilter) (domain.ListResult[*order.ClientOrder], error) {
	base := domain.ListFilter{Limit: filter.Limit, Offset: filter.Offset, OrderBy: "-date"}

	q := r.baseSelect()
	if filter.ClientID != nil {
		q = q.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	result := domain.ListResult[*order.ClientOrder]{
		Limit:  base.Limit,
		Offset: base.Offset,
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("date DESC", "id DESC")
	if base.Limit > 0 {
		q = q.Limit(uint64(base.Limit))
	}
	if base.Offset > 0 {
		q = q.Offset(uint64(base.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list orders: %w", err)
	}
	return result, nil
}
