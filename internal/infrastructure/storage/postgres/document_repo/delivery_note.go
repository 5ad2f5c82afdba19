package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"verduleria/internal/core/apperror"
	"verduleria/internal/domain/deliverynote"
	"verduleria/internal/infrastructure/storage/postgres"
)

const (
	deliveryNotesTable     = "delivery_notes"
	deliveryNoteLinesTable = "delivery_note_lines"
)

var deliveryNoteLineCols = []string{
	"line_id", "delivery_note_id", "order_line_id", "line_no",
	"product_unit_id", "quantity", "unit_price", "subtotal",
}

// DeliveryNoteRepo implements deliverynote.Repository.
type DeliveryNoteRepo struct {
	*BaseDocumentRepo[*deliverynote.DeliveryNote]
}

// NewDeliveryNoteRepo creates a DeliveryNote repository.
func NewDeliveryNoteRepo(txManager *postgres.TxManager) *DeliveryNoteRepo {
	return &DeliveryNoteRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			deliveryNotesTable,
			postgres.ExtractDBColumns[deliverynote.DeliveryNote](),
			func() *deliverynote.DeliveryNote { return &deliverynote.DeliveryNote{} },
		),
	}
}

// SaveLines replaces the note's lines.
func (r *DeliveryNoteRepo) SaveLines(ctx context.Context, noteID int64, lines []deliverynote.Line) error {
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{
			l.LineID, noteID, l.OrderLineID, l.LineNo,
			l.ProductUnitID, l.Quantity, l.UnitPrice, l.Subtotal,
		})
	}
	return r.replaceLines(ctx, deliveryNoteLinesTable, "delivery_note_id", noteID, deliveryNoteLineCols, rows)
}

// GetLines loads the note's lines ordered by line number.
func (r *DeliveryNoteRepo) GetLines(ctx context.Context, noteID int64) ([]deliverynote.Line, error) {
	q := r.Builder().
		Select(deliveryNoteLineCols...).
		From(deliveryNoteLinesTable).
		Where(squirrel.Eq{"delivery_note_id": noteID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	lines := make([]deliverynote.Line, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get delivery note lines: %w", err)
	}
	return lines, nil
}

// GetByOrder finds the note issued for an order.
func (r *DeliveryNoteRepo) GetByOrder(ctx context.Context, orderID int64) (*deliverynote.DeliveryNote, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"order_id": orderID}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// Delete removes the note and its lines.
func (r *DeliveryNoteRepo) Delete(ctx context.Context, id int64) error {
	delSQL, delArgs, err := r.Builder().
		Delete(deliveryNoteLinesTable).
		Where(squirrel.Eq{"delivery_note_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete lines: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}

	return r.BaseDocumentRepo.Delete(ctx, id)
}

// GetPrintModel assembles the printable document with names resolved.
func (r *DeliveryNoteRepo) GetPrintModel(ctx context.Context, id int64) (*deliverynote.PrintModel, error) {
	headSQL, headArgs, err := r.Builder().
		Select(
			"dn.number",
			"dn.date",
			"o.number AS order_number",
			"c.name AS client_name",
			"c.phone AS client_phone",
			"dn.delivered",
			"dn.total",
		).
		From(deliveryNotesTable + " dn").
		Join("client_orders o ON o.id = dn.order_id").
		Join("clients c ON c.id = dn.client_id").
		Where(squirrel.Eq{"dn.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var pm deliverynote.PrintModel
	if err := pgxscan.Get(ctx, r.querier(ctx), &pm, headSQL, headArgs...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(deliveryNotesTable, id)
		}
		return nil, fmt.Errorf("get print model: %w", err)
	}

	lineSQL, lineArgs, err := r.Builder().
		Select(
			"l.line_no",
			"p.name AS product_name",
			"u.name AS unit_name",
			"l.quantity",
			"l.unit_price",
			"l.subtotal",
		).
		From(deliveryNoteLinesTable + " l").
		Join("product_units pu ON pu.id = l.product_unit_id").
		Join("products p ON p.id = pu.product_id").
		Join("units u ON u.id = pu.unit_id").
		Where(squirrel.Eq{"l.delivery_note_id": id}).
		OrderBy("l.line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	pm.Lines = make([]deliverynote.PrintModelLine, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &pm.Lines, lineSQL, lineArgs...); err != nil {
		return nil, fmt.Errorf("get print lines: %w", err)
	}
	return &pm, nil
}

// List retrieves delivery notes newest first.
func (r *DeliveryNoteRepo) List(ctx context.Context, limit, offset int) ([]*deliverynote.DeliveryNote, error) {
	q := r.baseSelect().
		OrderBy("date DESC", "id DESC")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	return r.SelectMany(ctx, q)
}
