// Package register_repo provides PostgreSQL implementations for the stock
// and price registers: product-unit bindings (which carry stock), the
// conversion graph, and price history.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/types"
	"verduleria/internal/domain/productunit"
	"verduleria/internal/infrastructure/storage/postgres"
)

const productUnitsTable = "product_units"

// ProductUnitRepo implements productunit.Repository.
type ProductUnitRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewProductUnitRepo creates a ProductUnit repository.
func NewProductUnitRepo(txManager *postgres.TxManager) *ProductUnitRepo {
	return &ProductUnitRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[productunit.ProductUnit](),
	}
}

func (r *ProductUnitRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ProductUnitRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *ProductUnitRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(r.selectCols...).
		From(productUnitsTable)
}

// Create inserts a binding and assigns its generated ID.
func (r *ProductUnitRepo) Create(ctx context.Context, pu *productunit.ProductUnit) error {
	data := postgres.StructToMap(pu)
	delete(data, "id")

	q := r.builder().
		Insert(productUnitsTable).
		SetMap(data).
		Suffix("RETURNING id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&pu.ID); err != nil {
		return fmt.Errorf("insert product unit: %w", err)
	}
	return nil
}

// GetByID retrieves a binding by ID.
func (r *ProductUnitRepo) GetByID(ctx context.Context, id int64) (*productunit.ProductUnit, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": id}), id)
}

// GetByIDs retrieves several bindings at once.
func (r *ProductUnitRepo) GetByIDs(ctx context.Context, ids []int64) ([]*productunit.ProductUnit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.getMany(ctx, r.baseSelect().Where(squirrel.Eq{"id": ids}))
}

// GetByProductAndUnit retrieves the binding for a (product, unit) pair.
func (r *ProductUnitRepo) GetByProductAndUnit(ctx context.Context, productID, unitID int64) (*productunit.ProductUnit, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"unit_id": unitID})
	return r.getOne(ctx, q, fmt.Sprintf("%d/%d", productID, unitID))
}

// GetByProduct retrieves all bindings of a product.
func (r *ProductUnitRepo) GetByProduct(ctx context.Context, productID int64) ([]*productunit.ProductUnit, error) {
	return r.getMany(ctx, r.baseSelect().
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("id"))
}

// GetForUpdate retrieves a binding with a row lock.
func (r *ProductUnitRepo) GetForUpdate(ctx context.Context, id int64) (*productunit.ProductUnit, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE")
	return r.getOne(ctx, q, id)
}

// Update modifies margin and flags with optimistic locking. Stock is
// untouchable here; UpdateStock is the only stock writer.
func (r *ProductUnitRepo) Update(ctx context.Context, pu *productunit.ProductUnit) error {
	q := r.builder().
		Update(productUnitsTable).
		Set("margin", pu.Margin).
		Set("is_purchase_unit", pu.IsPurchaseUnit).
		Set("is_sale_unit", pu.IsSaleUnit).
		Set("updated_at", pu.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": pu.ID}).
		Where(squirrel.Eq{"version": pu.Version - 1})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product unit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(productUnitsTable, pu.ID)
	}
	return nil
}

// UpdateStock writes a new stock quantity for a row previously locked with
// GetForUpdate.
func (r *ProductUnitRepo) UpdateStock(ctx context.Context, id int64, stock types.Quantity) error {
	q := r.builder().
		Update(productUnitsTable).
		Set("stock", stock).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(productUnitsTable, id)
	}
	return nil
}

// HasPurchaseUnit reports whether the product already has a purchase unit.
func (r *ProductUnitRepo) HasPurchaseUnit(ctx context.Context, productID int64) (bool, error) {
	q := r.builder().
		Select("1").
		From(productUnitsTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"is_purchase_unit": true}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has purchase unit: %w", err)
	}
	return true, nil
}

func (r *ProductUnitRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key any) (*productunit.ProductUnit, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var pu productunit.ProductUnit
	if err := pgxscan.Get(ctx, r.querier(ctx), &pu, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(productUnitsTable, key)
		}
		return nil, fmt.Errorf("get product unit: %w", err)
	}
	return &pu, nil
}

func (r *ProductUnitRepo) getMany(ctx context.Context, q squirrel.SelectBuilder) ([]*productunit.ProductUnit, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := make([]*productunit.ProductUnit, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select product units: %w", err)
	}
	return items, nil
}
