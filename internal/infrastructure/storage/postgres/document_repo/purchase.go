package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"verduleria/internal/domain/purchase"
	"verduleria/internal/infrastructure/storage/postgres"
)

const (
	purchasesTable     = "purchases"
	purchaseLinesTable = "purchase_lines"
)

var purchaseLineCols = []string{
	"line_id", "purchase_id", "line_no", "product_unit_id",
	"quantity", "unit_price", "subtotal",
}

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	*BaseDocumentRepo[*purchase.Purchase]
}

// NewPurchaseRepo creates a Purchase repository.
func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			purchasesTable,
			postgres.ExtractDBColumns[purchase.Purchase](),
			func() *purchase.Purchase { return &purchase.Purchase{} },
		),
	}
}

// SaveLines replaces the document's lines.
func (r *PurchaseRepo) SaveLines(ctx context.Context, purchaseID int64, lines []purchase.Line) error {
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{
			l.LineID, purchaseID, l.LineNo, l.ProductUnitID,
			l.Quantity, l.UnitPrice, l.Subtotal,
		})
	}
	return r.replaceLines(ctx, purchaseLinesTable, "purchase_id", purchaseID, purchaseLineCols, rows)
}

// GetLines loads the document's lines ordered by line number.
func (r *PurchaseRepo) GetLines(ctx context.Context, purchaseID int64) ([]purchase.Line, error) {
	q := r.Builder().
		Select(purchaseLineCols...).
		From(purchaseLinesTable).
		Where(squirrel.Eq{"purchase_id": purchaseID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	lines := make([]purchase.Line, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get purchase lines: %w", err)
	}
	return lines, nil
}

// GetByPurchaseOrder finds the purchase spawned from a purchase order.
func (r *PurchaseRepo) GetByPurchaseOrder(ctx context.Context, poID int64) (*purchase.Purchase, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"purchase_order_id": poID}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// List retrieves purchases newest first.
func (r *PurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) ([]*purchase.Purchase, error) {
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
