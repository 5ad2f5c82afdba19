package register_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"verduleria/internal/core/apperror"
	"verduleria/internal/domain/conversion"
	"verduleria/internal/infrastructure/storage/postgres"
)

const conversionsTable = "conversions"

// ConversionRepo implements conversion.Repository.
type ConversionRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewConversionRepo creates a Conversion repository.
func NewConversionRepo(txManager *postgres.TxManager) *ConversionRepo {
	return &ConversionRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[conversion.Conversion](),
	}
}

func (r *ConversionRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ConversionRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *ConversionRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(r.selectCols...).
		From(conversionsTable)
}

// Create inserts an edge and assigns its generated ID.
func (r *ConversionRepo) Create(ctx context.Context, c *conversion.Conversion) error {
	data := postgres.StructToMap(c)
	delete(data, "id")

	q := r.builder().
		Insert(conversionsTable).
		SetMap(data).
		Suffix("RETURNING id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&c.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicateConversion(c.ProductID, c.OriginUnitID, c.DestUnitID).
				WithCause(err)
		}
		return fmt.Errorf("insert conversion: %w", err)
	}
	return nil
}

// GetByID retrieves an edge by ID.
func (r *ConversionRepo) GetByID(ctx context.Context, id int64) (*conversion.Conversion, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": id}), id)
}

// GetEdge retrieves the direct edge for (product, origin, dest).
func (r *ConversionRepo) GetEdge(ctx context.Context, productID, originUnitID, destUnitID int64) (*conversion.Conversion, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"origin_unit_id": originUnitID}).
		Where(squirrel.Eq{"dest_unit_id": destUnitID})
	return r.getOne(ctx, q, fmt.Sprintf("%d/%d->%d", productID, originUnitID, destUnitID))
}

// UpdateFactor rewrites an edge's factor.
func (r *ConversionRepo) UpdateFactor(ctx context.Context, id int64, factor string) error {
	q := r.builder().
		Update(conversionsTable).
		Set("factor", factor).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": id})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update factor: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(conversionsTable, id)
	}
	return nil
}

// Delete removes an edge.
func (r *ConversionRepo) Delete(ctx context.Context, id int64) error {
	q := r.builder().
		Delete(conversionsTable).
		Where(squirrel.Eq{"id": id})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete conversion: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(conversionsTable, id)
	}
	return nil
}

// ListByProduct retrieves all edges of a product.
func (r *ConversionRepo) ListByProduct(ctx context.Context, productID int64) ([]*conversion.Conversion, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("origin_unit_id", "dest_unit_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := make([]*conversion.Conversion, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select conversions: %w", err)
	}
	return items, nil
}

func (r *ConversionRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key any) (*conversion.Conversion, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c conversion.Conversion
	if err := pgxscan.Get(ctx, r.querier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(conversionsTable, key)
		}
		return nil, fmt.Errorf("get conversion: %w", err)
	}
	return &c, nil
}
