package productunit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/types"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memRepo struct {
	nextID int64
	rows   map[int64]*ProductUnit
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[int64]*ProductUnit)}
}

func (r *memRepo) Create(ctx context.Context, pu *ProductUnit) error {
	r.nextID++
	pu.ID = r.nextID
	r.rows[pu.ID] = pu
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id int64) (*ProductUnit, error) {
	pu, ok := r.rows[id]
	if !ok {
		return nil, apperror.NewNotFound("product unit", id)
	}
	return pu, nil
}

func (r *memRepo) GetByIDs(ctx context.Context, ids []int64) ([]*ProductUnit, error) {
	out := make([]*ProductUnit, 0, len(ids))
	for _, id := range ids {
		if pu, ok := r.rows[id]; ok {
			out = append(out, pu)
		}
	}
	return out, nil
}

func (r *memRepo) GetByProductAndUnit(ctx context.Context, productID, unitID int64) (*ProductUnit, error) {
	for _, pu := range r.rows {
		if pu.ProductID == productID && pu.UnitID == unitID {
			return pu, nil
		}
	}
	return nil, apperror.NewNotFound("product unit", 0)
}

func (r *memRepo) GetByProduct(ctx context.Context, productID int64) ([]*ProductUnit, error) {
	out := make([]*ProductUnit, 0)
	for _, pu := range r.rows {
		if pu.ProductID == productID {
			out = append(out, pu)
		}
	}
	return out, nil
}

func (r *memRepo) GetForUpdate(ctx context.Context, id int64) (*ProductUnit, error) {
	return r.GetByID(ctx, id)
}

func (r *memRepo) Update(ctx context.Context, pu *ProductUnit) error {
	if _, ok := r.rows[pu.ID]; !ok {
		return apperror.NewNotFound("product unit", pu.ID)
	}
	r.rows[pu.ID] = pu
	return nil
}

func (r *memRepo) UpdateStock(ctx context.Context, id int64, stock types.Quantity) error {
	pu, ok := r.rows[id]
	if !ok {
		return apperror.NewNotFound("product unit", id)
	}
	pu.Stock = stock
	return nil
}

func (r *memRepo) HasPurchaseUnit(ctx context.Context, productID int64) (bool, error) {
	for _, pu := range r.rows {
		if pu.ProductID == productID && pu.IsPurchaseUnit {
			return true, nil
		}
	}
	return false, nil
}

func TestEnsureBinding_FirstUnitWinsPurchaseFlag(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo(), fakeTxManager{})

	first, err := svc.EnsureBinding(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, first.IsPurchaseUnit)
	assert.True(t, first.IsSaleUnit)
	assert.True(t, first.Margin.Equal(DefaultMargin))
	assert.True(t, first.Stock.IsZero())

	second, err := svc.EnsureBinding(ctx, 1, 20)
	require.NoError(t, err)
	assert.False(t, second.IsPurchaseUnit)
}

func TestEnsureBinding_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo(), fakeTxManager{})

	first, err := svc.EnsureBinding(ctx, 1, 10)
	require.NoError(t, err)

	again, err := svc.EnsureBinding(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestStockMutation(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo, fakeTxManager{})

	pu, err := svc.EnsureBinding(ctx, 1, 10)
	require.NoError(t, err)

	require.NoError(t, svc.AddStock(ctx, pu.ID, types.MustQuantity("12.5")))
	require.NoError(t, svc.SubtractStock(ctx, pu.ID, types.MustQuantity("4")))

	got, err := repo.GetByID(ctx, pu.ID)
	require.NoError(t, err)
	assert.True(t, got.Stock.Equal(types.MustQuantity("8.5")))
}

func TestSubtractStock_NeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo, fakeTxManager{})

	pu, err := svc.EnsureBinding(ctx, 1, 10)
	require.NoError(t, err)
	require.NoError(t, svc.AddStock(ctx, pu.ID, types.MustQuantity("3")))

	err = svc.SubtractStock(ctx, pu.ID, types.MustQuantity("5"))
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))

	got, err := repo.GetByID(ctx, pu.ID)
	require.NoError(t, err)
	assert.True(t, got.Stock.Equal(types.MustQuantity("3")), "failed subtraction must not change stock")
}

func TestStockMutation_RejectsNonPositiveQty(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo(), fakeTxManager{})

	pu, err := svc.EnsureBinding(ctx, 1, 10)
	require.NoError(t, err)

	assert.Error(t, svc.AddStock(ctx, pu.ID, types.Zero()))
	assert.Error(t, svc.SubtractStock(ctx, pu.ID, types.MustQuantity("-1")))
}

func TestDesignatePurchaseUnit(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo(), fakeTxManager{})

	kg, err := svc.EnsureBinding(ctx, 1, 10)
	require.NoError(t, err)
	crate, err := svc.EnsureBinding(ctx, 1, 20)
	require.NoError(t, err)

	// kg already holds the flag
	err = svc.DesignatePurchaseUnit(ctx, crate.ID)
	require.Error(t, err)

	require.NoError(t, svc.ReleasePurchaseUnit(ctx, kg.ID))
	require.NoError(t, svc.DesignatePurchaseUnit(ctx, crate.ID))

	assert.False(t, kg.IsPurchaseUnit)
	assert.True(t, crate.IsPurchaseUnit)
}

func TestSetMargin(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo, fakeTxManager{})

	pu, err := svc.EnsureBinding(ctx, 1, 10)
	require.NoError(t, err)

	require.NoError(t, svc.SetMargin(ctx, pu.ID, types.MustMoney("35")))
	got, err := repo.GetByID(ctx, pu.ID)
	require.NoError(t, err)
	assert.True(t, got.Margin.Equal(types.MustMoney("35")))

	assert.Error(t, svc.SetMargin(ctx, pu.ID, types.MustMoney("-5")))
}

func TestMarginOrDefault(t *testing.T) {
	pu := NewProductUnit(1, 10)
	pu.Margin = types.Zero()
	assert.True(t, pu.MarginOrDefault().Equal(DefaultMargin))

	pu.Margin = types.MustMoney("30")
	assert.True(t, pu.MarginOrDefault().Equal(types.MustMoney("30")))
}
