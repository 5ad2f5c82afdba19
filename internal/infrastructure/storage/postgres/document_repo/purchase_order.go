package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/types"
	"verduleria/internal/domain/purchaseorder"
	"verduleria/internal/infrastructure/storage/postgres"
)

const (
	purchaseOrdersTable     = "purchase_orders"
	purchaseOrderLinesTable = "purchase_order_lines"
)

var purchaseOrderLineCols = []string{
	"line_id", "purchase_order_id", "line_no", "product_unit_id",
	"suggested_qty", "purchased_qty", "estimated_price", "unresolved",
}

// PurchaseOrderRepo implements purchaseorder.Repository.
type PurchaseOrderRepo struct {
	*BaseDocumentRepo[*purchaseorder.PurchaseOrder]
}

// NewPurchaseOrderRepo creates a PurchaseOrder repository.
func NewPurchaseOrderRepo(txManager *postgres.TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			purchaseOrdersTable,
			postgres.ExtractDBColumns[purchaseorder.PurchaseOrder](),
			func() *purchaseorder.PurchaseOrder { return &purchaseorder.PurchaseOrder{} },
		),
	}
}

// SaveLines replaces the document's lines.
func (r *PurchaseOrderRepo) SaveLines(ctx context.Context, poID int64, lines []purchaseorder.Line) error {
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{
			l.LineID, poID, l.LineNo, l.ProductUnitID,
			l.SuggestedQty, l.PurchasedQty, l.EstimatedPrice, l.Unresolved,
		})
	}
	return r.replaceLines(ctx, purchaseOrderLinesTable, "purchase_order_id", poID, purchaseOrderLineCols, rows)
}

// UpdateLinePurchasedQty sets one line's purchased quantity; nil clears it.
func (r *PurchaseOrderRepo) UpdateLinePurchasedQty(ctx context.Context, lineID uuid.UUID, qty *types.Quantity) error {
	q := r.Builder().
		Update(purchaseOrderLinesTable).
		Set("purchased_qty", qty).
		Where(squirrel.Eq{"line_id": lineID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update purchased qty: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase order line", lineID)
	}
	return nil
}

// GetLines loads the document's lines ordered by line number.
func (r *PurchaseOrderRepo) GetLines(ctx context.Context, poID int64) ([]purchaseorder.Line, error) {
	q := r.Builder().
		Select(purchaseOrderLineCols...).
		From(purchaseOrderLinesTable).
		Where(squirrel.Eq{"purchase_order_id": poID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	lines := make([]purchaseorder.Line, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get purchase order lines: %w", err)
	}
	return lines, nil
}

// GetPrintModel assembles the printable document with names resolved.
func (r *PurchaseOrderRepo) GetPrintModel(ctx context.Context, id int64) (*purchaseorder.PrintModel, error) {
	headSQL, headArgs, err := r.Builder().
		Select("number", "date", "status", "estimated_total").
		From(purchaseOrdersTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var pm purchaseorder.PrintModel
	if err := pgxscan.Get(ctx, r.querier(ctx), &pm, headSQL, headArgs...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(purchaseOrdersTable, id)
		}
		return nil, fmt.Errorf("get print model: %w", err)
	}

	lineSQL, lineArgs, err := r.Builder().
		Select(
			"l.line_no",
			"p.name AS product_name",
			"p.supplier",
			"u.name AS unit_name",
			"l.suggested_qty",
			"l.purchased_qty",
			"l.estimated_price",
			"l.unresolved",
		).
		From(purchaseOrderLinesTable + " l").
		Join("product_units pu ON pu.id = l.product_unit_id").
		Join("products p ON p.id = pu.product_id").
		Join("units u ON u.id = pu.unit_id").
		Where(squirrel.Eq{"l.purchase_order_id": id}).
		OrderBy("l.line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	pm.Lines = make([]purchaseorder.PrintModelLine, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &pm.Lines, lineSQL, lineArgs...); err != nil {
		return nil, fmt.Errorf("get print lines: %w", err)
	}
	return &pm, nil
}

// List retrieves purchase orders newest first.
func (r *PurchaseOrderRepo) List(ctx context.Context, filter purchaseorder.ListFilter) ([]*purchaseorder.PurchaseOrder, error) {
	q := r.baseSelect().
		OrderBy("date DESC", "id DESC")

	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	return r.SelectMany(ctx, q)
}
