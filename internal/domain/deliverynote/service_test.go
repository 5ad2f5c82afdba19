package deliverynote

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/types"
	"verduleria/internal/domain"
	"verduleria/internal/domain/order"
	"verduleria/internal/domain/productunit"
	"verduleria/pkg/numerator"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type seqRow struct{ val int64 }

func (r seqRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.val
	return nil
}

type seqQuerier struct{ n int64 }

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.n++
	return seqRow{q.n}
}

type memRepo struct {
	nextID int64
	docs   map[int64]*DeliveryNote
	lines  map[int64][]Line
}

func newMemRepo() *memRepo {
	return &memRepo{docs: make(map[int64]*DeliveryNote), lines: make(map[int64][]Line)}
}

func (r *memRepo) Create(ctx context.Context, dn *DeliveryNote) error {
	r.nextID++
	dn.ID = r.nextID
	r.docs[dn.ID] = dn
	return nil
}
func (r *memRepo) Update(ctx context.Context, dn *DeliveryNote) error {
	if _, ok := r.docs[dn.ID]; !ok {
		return apperror.NewNotFound("delivery note", dn.ID)
	}
	r.docs[dn.ID] = dn
	return nil
}
func (r *memRepo) SaveLines(ctx context.Context, noteID int64, lines []Line) error {
	r.lines[noteID] = append([]Line(nil), lines...)
	return nil
}
func (r *memRepo) GetByID(ctx context.Context, id int64) (*DeliveryNote, error) {
	dn, ok := r.docs[id]
	if !ok {
		return nil, apperror.NewNotFound("delivery note", id)
	}
	return dn, nil
}
func (r *memRepo) GetByOrder(ctx context.Context, orderID int64) (*DeliveryNote, error) {
	for _, dn := range r.docs {
		if dn.OrderID == orderID {
			return dn, nil
		}
	}
	return nil, apperror.NewNotFound("delivery note", orderID)
}
func (r *memRepo) GetLines(ctx context.Context, noteID int64) ([]Line, error) {
	return append([]Line(nil), r.lines[noteID]...), nil
}
func (r *memRepo) Delete(ctx context.Context, id int64) error {
	delete(r.docs, id)
	delete(r.lines, id)
	return nil
}
func (r *memRepo) GetPrintModel(ctx context.Context, id int64) (*PrintModel, error) {
	dn, ok := r.docs[id]
	if !ok {
		return nil, apperror.NewNotFound("delivery note", id)
	}
	return &PrintModel{Number: dn.Number, Total: dn.Total}, nil
}
func (r *memRepo) List(ctx context.Context, limit, offset int) ([]*DeliveryNote, error) {
	out := make([]*DeliveryNote, 0, len(r.docs))
	for _, dn := range r.docs {
		out = append(out, dn)
	}
	return out, nil
}

type memOrderRepo struct {
	orders map[int64]*order.ClientOrder
	lines  map[int64][]order.Line
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders: make(map[int64]*order.ClientOrder),
		lines:  make(map[int64][]order.Line),
	}
}

func (r *memOrderRepo) Create(ctx context.Context, o *order.ClientOrder) error { return nil }
func (r *memOrderRepo) Update(ctx context.Context, o *order.ClientOrder) error {
	r.orders[o.ID] = o
	return nil
}
func (r *memOrderRepo) SaveLines(ctx context.Context, orderID int64, lines []order.Line) error {
	r.lines[orderID] = append([]order.Line(nil), lines...)
	return nil
}
func (r *memOrderRepo) GetByID(ctx context.Context, id int64) (*order.ClientOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, apperror.NewNotFound("order", id)
	}
	return o, nil
}
func (r *memOrderRepo) GetLines(ctx context.Context, orderID int64) ([]order.Line, error) {
	return append([]order.Line(nil), r.lines[orderID]...), nil
}
func (r *memOrderRepo) ListPendingWithLines(ctx context.Context) ([]*order.ClientOrder, error) {
	return nil, nil
}
func (r *memOrderRepo) UpdateStatusBulk(ctx context.Context, ids []int64, from, to order.Status) ([]int64, error) {
	return ids, nil
}
func (r *memOrderRepo) List(ctx context.Context, filter order.ListFilter) (domain.ListResult[*order.ClientOrder], error) {
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
	return nil, apperror.NewNotFound("product unit", 0)
}
func (s *bindingRepoStub) GetByProduct(ctx context.Context, productID int64) ([]*productunit.ProductUnit, error) {
	return nil, nil
}
func (s *bindingRepoStub) GetForUpdate(ctx context.Context, id int64) (*productunit.ProductUnit, error) {
	return s.GetByID(ctx, id)
}
func (s *bindingRepoStub) Update(ctx context.Context, pu *productunit.ProductUnit) error { return nil }
func (s *bindingRepoStub) UpdateStock(ctx context.Context, id int64, stock types.Quantity) error {
	return nil
}
func (s *bindingRepoStub) HasPurchaseUnit(ctx context.Context, productID int64) (bool, error) {
	return false, nil
}

type stockStub struct {
	levels map[int64]types.Quantity
}

func newStockStub() *stockStub {
	return &stockStub{levels: make(map[int64]types.Quantity)}
}

func (s *stockStub) SubtractStock(ctx context.Context, id int64, qty types.Quantity) error {
	level, ok := s.levels[id]
	if !ok {
		level = types.Zero()
	}
	remaining := level.Sub(qty)
	if remaining.IsNegative() {
		return apperror.NewInsufficientStock(id, qty.String(), level.String())
	}
	s.levels[id] = remaining
	return nil
}

type clientPriceRow struct {
	clientID, productUnitID, noteID int64
	price                           types.Money
}

type priceRepoStub struct {
	costs  map[int64]types.Money
	client []clientPriceRow
}

func newPriceRepoStub() *priceRepoStub {
	return &priceRepoStub{costs: make(map[int64]types.Money)}
}

func (s *priceRepoStub) AddPurchasePrice(ctx context.Context, productUnitID, purchaseID int64, price types.Money) error {
	return nil
}
func (s *priceRepoStub) LatestPurchasePrice(ctx context.Context, productUnitID int64) (types.Money, error) {
	p, ok := s.costs[productUnitID]
	if !ok {
		return types.Zero(), apperror.NewNotFound("purchase price", productUnitID)
	}
	return p, nil
}
func (s *priceRepoStub) LatestPurchasePrices(ctx context.Context, productUnitIDs []int64) (map[int64]types.Money, error) {
	out := make(map[int64]types.Money)
	for _, id := range productUnitIDs {
		if p, ok := s.costs[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}
func (s *priceRepoStub) AddClientPrice(ctx context.Context, clientID, productUnitID, deliveryNoteID int64, price types.Money) error {
	s.client = append(s.client, clientPriceRow{clientID, productUnitID, deliveryNoteID, price})
	return nil
}
func (s *priceRepoStub) LatestClientPrice(ctx context.Context, clientID, productUnitID int64, excludeNoteID int64) (types.Money, error) {
	for i := len(s.client) - 1; i >= 0; i-- {
		row := s.client[i]
		if row.clientID == clientID && row.productUnitID == productUnitID &&
			(excludeNoteID == 0 || row.noteID != excludeNoteID) {
			return row.price, nil
		}
	}
	return types.Zero(), apperror.NewNotFound("client price", productUnitID)
}
func (s *priceRepoStub) DeleteByDeliveryNote(ctx context.Context, deliveryNoteID int64) error {
	kept := s.client[:0]
	for _, row := range s.client {
		if row.noteID != deliveryNoteID {
			kept = append(kept, row)
		}
	}
	s.client = kept
	return nil
}

type fixture struct {
	svc       *Service
	repo      *memRepo
	orderRepo *memOrderRepo
	stock     *stockStub
	prices    *priceRepoStub
}

func newFixture() *fixture {
	repo := newMemRepo()
	orderRepo := newMemOrderRepo()
	stock := newStockStub()
	prices := newPriceRepoStub()
	bindings := &bindingRepoStub{units: []*productunit.ProductUnit{
		testBinding(101, "30"),
		testBinding(102, "50"),
	}}

	svc := NewService(repo, orderRepo, bindings, stock, prices,
		numerator.New(&seqQuerier{}), fakeTxManager{})

	return &fixture{svc: svc, repo: repo, orderRepo: orderRepo, stock: stock, prices: prices}
}

func testBinding(id int64, margin string) *productunit.ProductUnit {
	pu := productunit.NewProductUnit(1, id)
	pu.ID = id
	pu.Margin = types.MustMoney(margin)
	return pu
}

// seedOrder registers a pending order with one line per (productUnitID, qty).
func (f *fixture) seedOrder(id int64, lines map[int64]string) *order.ClientOrder {
	o := order.NewClientOrder(7)
	o.ID = id
	o.Number = "PE-2026-00001"
	for puID, qty := range lines {
		o.AddLine(puID, types.MustQuantity(qty))
	}
	f.orderRepo.orders[id] = o
	f.orderRepo.lines[id] = o.Lines
	return o
}

func (f *fixture) allPrices(o *order.ClientOrder, price string) []LinePrice {
	out := make([]LinePrice, 0, len(o.Lines))
	for _, l := range o.Lines {
		out = append(out, LinePrice{OrderLineID: l.LineID, UnitPrice: types.MustMoney(price)})
	}
	return out
}

func TestSuggestedPrices(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.seedOrder(1, map[int64]string{101: "4"})

	// Bought at 100 with a 30% margin; the client paid 125 last time
	f.prices.costs[101] = types.MustMoney("100")
	f.prices.client = append(f.prices.client, clientPriceRow{7, 101, 55, types.MustMoney("125")})

	out, err := f.svc.SuggestedPrices(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, out, 1)

	sp := out[0]
	assert.True(t, sp.LastCost.Equal(types.MustMoney("100")))
	assert.True(t, sp.Suggested.Equal(types.MustMoney("130")))
	require.NotNil(t, sp.LastClientPrice)
	assert.True(t, sp.LastClientPrice.Equal(types.MustMoney("125")))
}

func TestSuggestedPrices_NoHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.seedOrder(1, map[int64]string{101: "4"})

	out, err := f.svc.SuggestedPrices(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].LastCost.IsZero(), "cost basis defaults to zero")
	assert.True(t, out[0].Suggested.IsZero())
	assert.Nil(t, out[0].LastClientPrice)
}

func TestCreate_FixesPricesOnOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.seedOrder(1, map[int64]string{101: "4"})

	dn, err := f.svc.Create(ctx, o.ID, f.allPrices(o, "150"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(dn.Number, "RM-"), "number = %s", dn.Number)
	assert.False(t, dn.Delivered)
	assert.True(t, dn.Total.Equal(types.MustMoney("600")))

	// Order side: priced lines, recalculated total, in_progress
	assert.Equal(t, order.StatusInProgress, o.Status)
	assert.True(t, o.Total.Equal(types.MustMoney("600")))
	savedLines := f.orderRepo.lines[o.ID]
	require.NotNil(t, savedLines[0].UnitPrice)
	assert.True(t, savedLines[0].UnitPrice.Equal(types.MustMoney("150")))

	// Client price history
	require.Len(t, f.prices.client, 1)
	assert.Equal(t, int64(7), f.prices.client[0].clientID)
	assert.True(t, f.prices.client[0].price.Equal(types.MustMoney("150")))
}

func TestCreate_EveryLineMustBePriced(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.seedOrder(1, map[int64]string{101: "4", 102: "2"})

	partial := []LinePrice{{OrderLineID: o.Lines[0].LineID, UnitPrice: types.MustMoney("150")}}
	_, err := f.svc.Create(ctx, o.ID, partial)
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}

func TestCreate_OnePerOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.seedOrder(1, map[int64]string{101: "4"})

	_, err := f.svc.Create(ctx, o.ID, f.allPrices(o, "150"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, o.ID, f.allPrices(o, "150"))
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestCreate_NegativePrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.seedOrder(1, map[int64]string{101: "4"})

	_, err := f.svc.Create(ctx, o.ID, f.allPrices(o, "-1"))
	require.Error(t, err)
}

func TestCreate_UnknownOrder(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), 99, []LinePrice{
		{OrderLineID: uuid.New(), UnitPrice: types.MustMoney("1")},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestConfirmDelivery(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.seedOrder(1, map[int64]string{101: "4"})
	f.stock.levels[101] = types.MustQuantity("10")

	dn, err := f.svc.Create(ctx, o.ID, f.allPrices(o, "150"))
	require.NoError(t, err)

	delivered, err := f.svc.ConfirmDelivery(ctx, dn.ID)
	require.NoError(t, err)
	assert.True(t, delivered.Delivered)
	require.NotNil(t, delivered.DeliveredAt)

	assert.True(t, f.stock.levels[101].Equal(types.MustQuantity("6")))
	assert.Equal(t, order.StatusCompleted, o.Status)
}

func TestConfirmDelivery_Twice(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.seedOrder(1, map[int64]string{101: "4"})
	f.stock.levels[101] = types.MustQuantity("10")

	dn, err := f.svc.Create(ctx, o.ID, f.allPrices(o, "150"))
	require.NoError(t, err)
	_, err = f.svc.ConfirmDelivery(ctx, dn.ID)
	require.NoError(t, err)

	_, err = f.svc.ConfirmDelivery(ctx, dn.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
	assert.True(t, f.stock.levels[101].Equal(types.MustQuantity("6")), "stock must not subtract twice")
}

func TestConfirmDelivery_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.seedOrder(1, map[int64]string{101: "4"})
	f.stock.levels[101] = types.MustQuantity("2")

	dn, err := f.svc.Create(ctx, o.ID, f.allPrices(o, "150"))
	require.NoError(t, err)

	_, err = f.svc.ConfirmDelivery(ctx, dn.ID)
	require.Error(t, err)
}

func TestVoid_RevertsOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.seedOrder(1, map[int64]string{101: "4"})

	dn, err := f.svc.Create(ctx, o.ID, f.allPrices(o, "150"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Void(ctx, dn.ID))

	// Note gone, order back to pending with prices cleared
	_, err = f.svc.GetByID(ctx, dn.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, order.StatusPending, o.Status)
	assert.True(t, o.Total.IsZero())
	savedLines := f.orderRepo.lines[o.ID]
	assert.Nil(t, savedLines[0].UnitPrice)
	assert.Nil(t, savedLines[0].Subtotal)
	assert.Empty(t, f.prices.client, "client price rows must be removed")
}

func TestVoid_DeliveredIsFinal(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.seedOrder(1, map[int64]string{101: "4"})
	f.stock.levels[101] = types.MustQuantity("10")

	dn, err := f.svc.Create(ctx, o.ID, f.allPrices(o, "150"))
	require.NoError(t, err)
	_, err = f.svc.ConfirmDelivery(ctx, dn.ID)
	require.NoError(t, err)

	err = f.svc.Void(ctx, dn.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}
