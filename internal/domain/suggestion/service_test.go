package suggestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/types"
	"verduleria/internal/domain"
	"verduleria/internal/domain/conversion"
	"verduleria/internal/domain/order"
	"verduleria/internal/domain/productunit"
)

// --- fixture repositories ---

type orderRepoStub struct {
	pending []*order.ClientOrder
}

func (s *orderRepoStub) Create(ctx context.Context, o *order.ClientOrder) error { return nil }
func (s *orderRepoStub) Update(ctx context.Context, o *order.ClientOrder) error { return nil }
func (s *orderRepoStub) SaveLines(ctx context.Context, orderID int64, lines []order.Line) error {
	return nil
}
func (s *orderRepoStub) GetByID(ctx context.Context, id int64) (*order.ClientOrder, error) {
	return nil, apperror.NewNotFound("order", id)
}
func (s *orderRepoStub) GetLines(ctx context.Context, orderID int64) ([]order.Line, error) {
	return nil, nil
}
func (s *orderRepoStub) ListPendingWithLines(ctx context.Context) ([]*order.ClientOrder, error) {
	return s.pending, nil
}
func (s *orderRepoStub) UpdateStatusBulk(ctx context.Context, ids []int64, from, to order.Status) ([]int64, error) {
	return ids, nil
}
func (s *orderRepoStub) List(ctx context.Context, filter order.ListFilter) (domain.ListResult[*order.ClientOrder], error) {
	return domain.ListResult[*order.ClientOrder]{}, nil
}

type bindingRepoStub struct {
	units []*productunit.ProductUnit
}

func (s *bindingRepoStub) Create(ctx context.Context, pu *productunit.ProductUnit) error { return nil }
func (s *bindingRepoStub) GetByID(ctx context.Context, id int64) (*productunit.ProductUnit, error) {
	for _, pu := range s.units {
		if pu.ID == id {
			return pu, nil
		}
	}
	return nil, apperror.NewNotFound("product unit", id)
}
func (s *bindingRepoStub) GetByIDs(ctx context.Context, ids []int64) ([]*productunit.ProductUnit, error) {
	out := make([]*productunit.ProductUnit, 0, len(ids))
	for _, id := range ids {
		if pu, err := s.GetByID(ctx, id); err == nil {
			out = append(out, pu)
		}
	}
	return out, nil
}
func (s *bindingRepoStub) GetByProductAndUnit(ctx context.Context, productID, unitID int64) (*productunit.ProductUnit, error) {
	for _, pu := range s.units {
		if pu.ProductID == productID && pu.UnitID == unitID {
			return pu, nil
		}
	}
	return nil, apperror.NewNotFound("product unit", 0)
}
func (s *bindingRepoStub) GetByProduct(ctx context.Context, productID int64) ([]*productunit.ProductUnit, error) {
	out := make([]*productunit.ProductUnit, 0)
	for _, pu := range s.units {
		if pu.ProductID == productID {
			out = append(out, pu)
		}
	}
	return out, nil
}
func (s *bindingRepoStub) GetForUpdate(ctx context.Context, id int64) (*productunit.ProductUnit, error) {
	return s.GetByID(ctx, id)
}
func (s *bindingRepoStub) Update(ctx context.Context, pu *productunit.ProductUnit) error { return nil }
func (s *bindingRepoStub) UpdateStock(ctx context.Context, id int64, stock types.Quantity) error {
	return nil
}
func (s *bindingRepoStub) HasPurchaseUnit(ctx context.Context, productID int64) (bool, error) {
	for _, pu := range s.units {
		if pu.ProductID == productID && pu.IsPurchaseUnit {
			return true, nil
		}
	}
	return false, nil
}

type conversionRepoStub struct {
	edges []*conversion.Conversion
}

func (s *conversionRepoStub) Create(ctx context.Context, c *conversion.Conversion) error { return nil }
func (s *conversionRepoStub) GetByID(ctx context.Context, id int64) (*conversion.Conversion, error) {
	return nil, apperror.NewNotFound("conversion", id)
}
func (s *conversionRepoStub) GetEdge(ctx context.Context, productID, originUnitID, destUnitID int64) (*conversion.Conversion, error) {
	for _, c := range s.edges {
		if c.ProductID == productID && c.OriginUnitID == originUnitID && c.DestUnitID == destUnitID {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("conversion", 0)
}
func (s *conversionRepoStub) UpdateFactor(ctx context.Context, id int64, factor string) error {
	return nil
}
func (s *conversionRepoStub) Delete(ctx context.Context, id int64) error { return nil }
func (s *conversionRepoStub) ListByProduct(ctx context.Context, productID int64) ([]*conversion.Conversion, error) {
	return s.edges, nil
}

func binding(id, productID, unitID int64, stock string, isPurchase bool) *productunit.ProductUnit {
	pu := productunit.NewProductUnit(productID, unitID)
	pu.ID = id
	pu.Stock = types.MustQuantity(stock)
	pu.IsPurchaseUnit = isPurchase
	return pu
}

func pendingOrder(id int64, lines ...order.Line) *order.ClientOrder {
	o := order.NewClientOrder(1)
	o.ID = id
	o.Status = order.StatusPending
	o.Lines = lines
	return o
}

func line(productUnitID int64, qty string) order.Line {
	return order.Line{ProductUnitID: productUnitID, Quantity: types.MustQuantity(qty)}
}

// Tomato is sold in kg and crates, bought in kg; 1 crate = 10 kg.
// Two orders demand 25 kg and 2 crates, 5 kg are in stock: the run must
// suggest buying 40 kg.
func TestAggregate_NormalizesIntoPurchaseUnit(t *testing.T) {
	const (
		kgUnit    = int64(10)
		crateUnit = int64(20)
	)
	kg := binding(101, 1, kgUnit, "5", true)
	crate := binding(102, 1, crateUnit, "0", false)

	crateToKg := conversion.NewConversion(1, crateUnit, kgUnit, types.MustQuantity("10"))
	kgToCrate := conversion.NewConversion(1, kgUnit, crateUnit, crateToKg.InverseFactor())

	svc := NewService(
		&orderRepoStub{pending: []*order.ClientOrder{
			pendingOrder(1, line(101, "25")),
			pendingOrder(2, line(102, "2")),
		}},
		&bindingRepoStub{units: []*productunit.ProductUnit{kg, crate}},
		&conversionRepoStub{edges: []*conversion.Conversion{crateToKg, kgToCrate}},
	)

	result, err := svc.Aggregate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, result.OrderIDs)
	require.Len(t, result.Suggestions, 1)

	sug := result.Suggestions[0]
	assert.Equal(t, int64(101), sug.ProductUnitID)
	assert.Equal(t, kgUnit, sug.UnitID)
	assert.True(t, sug.NeededQty.Equal(types.MustQuantity("45")))
	assert.True(t, sug.StockQty.Equal(types.MustQuantity("5")))
	assert.True(t, sug.SuggestedQty.Equal(types.MustQuantity("40")))
	assert.False(t, sug.Unresolved)
}

func TestAggregate_StockCoversdemand(t *testing.T) {
	kg := binding(101, 1, 10, "50", true)

	svc := NewService(
		&orderRepoStub{pending: []*order.ClientOrder{
			pendingOrder(1, line(101, "30")),
		}},
		&bindingRepoStub{units: []*productunit.ProductUnit{kg}},
		&conversionRepoStub{},
	)

	result, err := svc.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Suggestions)
	assert.Equal(t, []int64{1}, result.OrderIDs)
}

func TestAggregate_NoPurchaseUnit_SuggestsPerUnit(t *testing.T) {
	kg := binding(101, 1, 10, "1", false)
	crate := binding(102, 1, 20, "0", false)

	svc := NewService(
		&orderRepoStub{pending: []*order.ClientOrder{
			pendingOrder(1, line(101, "4"), line(102, "2")),
		}},
		&bindingRepoStub{units: []*productunit.ProductUnit{kg, crate}},
		&conversionRepoStub{},
	)

	result, err := svc.Aggregate(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Suggestions, 2)

	assert.True(t, result.Suggestions[0].SuggestedQty.Equal(types.MustQuantity("3")))
	assert.Equal(t, int64(101), result.Suggestions[0].ProductUnitID)
	assert.True(t, result.Suggestions[1].SuggestedQty.Equal(types.MustQuantity("2")))
	assert.Equal(t, int64(102), result.Suggestions[1].ProductUnitID)
}

// Demand in a unit with no edge to the purchase unit survives the run as a
// separate, flagged suggestion instead of disappearing.
func TestAggregate_UnconvertibleDemandIsFlagged(t *testing.T) {
	kg := binding(101, 1, 10, "0", true)
	dozen := binding(103, 1, 30, "0", false)

	svc := NewService(
		&orderRepoStub{pending: []*order.ClientOrder{
			pendingOrder(1, line(101, "5"), line(103, "3")),
		}},
		&bindingRepoStub{units: []*productunit.ProductUnit{kg, dozen}},
		&conversionRepoStub{},
	)

	result, err := svc.Aggregate(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Suggestions, 2)

	var flagged, direct int
	for _, sug := range result.Suggestions {
		if sug.Unresolved {
			flagged++
			assert.Equal(t, int64(103), sug.ProductUnitID)
			assert.True(t, sug.SuggestedQty.Equal(types.MustQuantity("3")))
		} else {
			direct++
			assert.Equal(t, int64(101), sug.ProductUnitID)
			assert.True(t, sug.SuggestedQty.Equal(types.MustQuantity("5")))
		}
	}
	assert.Equal(t, 1, flagged)
	assert.Equal(t, 1, direct)
}

func TestAggregate_NoPendingOrders(t *testing.T) {
	svc := NewService(&orderRepoStub{}, &bindingRepoStub{}, &conversionRepoStub{})

	result, err := svc.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Suggestions)
	assert.Empty(t, result.OrderIDs)
}

// Aggregation alone never mutates orders; only purchase-order creation
// sweeps them.
func TestAggregate_IsReadOnly(t *testing.T) {
	kg := binding(101, 1, 10, "0", true)
	o := pendingOrder(1, line(101, "5"))

	svc := NewService(
		&orderRepoStub{pending: []*order.ClientOrder{o}},
		&bindingRepoStub{units: []*productunit.ProductUnit{kg}},
		&conversionRepoStub{},
	)

	_, err := svc.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
}
