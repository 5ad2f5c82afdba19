package purchaseorder

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
	"verduleria/internal/domain/conversion"
	"verduleria/internal/domain/order"
	"verduleria/internal/domain/productunit"
	"verduleria/internal/domain/suggestion"
	"verduleria/pkg/numerator"
)

// --- shared test doubles ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type seqRow struct{ val int64 }

func (r seqRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.val
	return nil
}

// seqQuerier stands in for the sys_sequences upsert.
type seqQuerier struct{ n int64 }

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.n++
	return seqRow{q.n}
}

func testNumerator() *numerator.Service {
	return numerator.New(&seqQuerier{})
}

type memOrderRepo struct {
	orders map[int64]*order.ClientOrder
}

func newMemOrderRepo(orders ...*order.ClientOrder) *memOrderRepo {
	r := &memOrderRepo{orders: make(map[int64]*order.ClientOrder)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *memOrderRepo) Create(ctx context.Context, o *order.ClientOrder) error { return nil }
func (r *memOrderRepo) Update(ctx context.Context, o *order.ClientOrder) error { return nil }
func (r *memOrderRepo) SaveLines(ctx context.Context, orderID int64, lines []order.Line) error {
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
	o, err := r.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return o.Lines, nil
}
func (r *memOrderRepo) ListPendingWithLines(ctx context.Context) ([]*order.ClientOrder, error) {
	out := make([]*order.ClientOrder, 0)
	for _, o := range r.orders {
		if o.Status == order.StatusPending {
			out = append(out, o)
		}
	}
	return out, nil
}
func (r *memOrderRepo) UpdateStatusBulk(ctx context.Context, ids []int64, from, to order.Status) ([]int64, error) {
	flipped := make([]int64, 0, len(ids))
	for _, id := range ids {
		if o, ok := r.orders[id]; ok && o.Status == from {
			o.Status = to
			flipped = append(flipped, id)
		}
	}
	return flipped, nil
}
func (r *memOrderRepo) List(ctx context.Context, filter order.ListFilter) (domain.ListResult[*order.ClientOrder], error) {
	return domain.ListResult[*order.ClientOrder]{}, nil
}

type memPORepo struct {
	nextID int64
	docs   map[int64]*PurchaseOrder
	lines  map[int64][]Line
}

func newMemPORepo() *memPORepo {
	return &memPORepo{docs: make(map[int64]*PurchaseOrder), lines: make(map[int64][]Line)}
}

func (r *memPORepo) Create(ctx context.Context, po *PurchaseOrder) error {
	r.nextID++
	po.ID = r.nextID
	r.docs[po.ID] = po
	return nil
}
func (r *memPORepo) Update(ctx context.Context, po *PurchaseOrder) error {
	if _, ok := r.docs[po.ID]; !ok {
		return apperror.NewNotFound("purchase order", po.ID)
	}
	r.docs[po.ID] = po
	return nil
}
func (r *memPORepo) SaveLines(ctx context.Context, poID int64, lines []Line) error {
	r.lines[poID] = append([]Line(nil), lines...)
	return nil
}
func (r *memPORepo) UpdateLinePurchasedQty(ctx context.Context, lineID uuid.UUID, qty *types.Quantity) error {
	for poID, lines := range r.lines {
		for i := range lines {
			if lines[i].LineID == lineID {
				lines[i].PurchasedQty = qty
				r.lines[poID] = lines
				return nil
			}
		}
	}
	return apperror.NewNotFound("purchase order line", lineID)
}
func (r *memPORepo) GetByID(ctx context.Context, id int64) (*PurchaseOrder, error) {
	po, ok := r.docs[id]
	if !ok {
		return nil, apperror.NewNotFound("purchase order", id)
	}
	return po, nil
}
func (r *memPORepo) GetLines(ctx context.Context, poID int64) ([]Line, error) {
	return append([]Line(nil), r.lines[poID]...), nil
}
func (r *memPORepo) GetPrintModel(ctx context.Context, id int64) (*PrintModel, error) {
	return nil, apperror.NewNotFound("purchase order", id)
}
func (r *memPORepo) List(ctx context.Context, filter ListFilter) ([]*PurchaseOrder, error) {
	out := make([]*PurchaseOrder, 0, len(r.docs))
	for _, po := range r.docs {
		out = append(out, po)
	}
	return out, nil
}

type priceRepoStub struct {
	latest map[int64]types.Money
}

func (s *priceRepoStub) AddPurchasePrice(ctx context.Context, productUnitID, purchaseID int64, price types.Money) error {
	return nil
}
func (s *priceRepoStub) LatestPurchasePrice(ctx context.Context, productUnitID int64) (types.Money, error) {
	p, ok := s.latest[productUnitID]
	if !ok {
		return types.Zero(), apperror.NewNotFound("purchase price", productUnitID)
	}
	return p, nil
}
func (s *priceRepoStub) LatestPurchasePrices(ctx context.Context, productUnitIDs []int64) (map[int64]types.Money, error) {
	out := make(map[int64]types.Money)
	for _, id := range productUnitIDs {
		if p, ok := s.latest[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}
func (s *priceRepoStub) AddClientPrice(ctx context.Context, clientID, productUnitID, deliveryNoteID int64, price types.Money) error {
	return nil
}
func (s *priceRepoStub) LatestClientPrice(ctx context.Context, clientID, productUnitID int64, excludeNoteID int64) (types.Money, error) {
	return types.Zero(), apperror.NewNotFound("client price", productUnitID)
}
func (s *priceRepoStub) DeleteByDeliveryNote(ctx context.Context, deliveryNoteID int64) error {
	return nil
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
	return false, nil
}

type conversionRepoStub struct{}

func (conversionRepoStub) Create(ctx context.Context, c *conversion.Conversion) error { return nil }
func (conversionRepoStub) GetByID(ctx context.Context, id int64) (*conversion.Conversion, error) {
	return nil, apperror.NewNotFound("conversion", id)
}
func (conversionRepoStub) GetEdge(ctx context.Context, productID, originUnitID, destUnitID int64) (*conversion.Conversion, error) {
	return nil, apperror.NewNotFound("conversion", 0)
}
func (conversionRepoStub) UpdateFactor(ctx context.Context, id int64, factor string) error {
	return nil
}
func (conversionRepoStub) Delete(ctx context.Context, id int64) error { return nil }
func (conversionRepoStub) ListByProduct(ctx context.Context, productID int64) ([]*conversion.Conversion, error) {
	return nil, nil
}

type spawnerStub struct {
	calls []int64
	err   error
}

func (s *spawnerStub) SpawnFromPurchaseOrder(ctx context.Context, po *PurchaseOrder) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.calls = append(s.calls, po.ID)
	return 900, nil
}

// --- fixtures ---

func pendingOrder(id int64, productUnitID int64, qty string) *order.ClientOrder {
	o := order.NewClientOrder(1)
	o.ID = id
	o.AddLine(productUnitID, types.MustQuantity(qty))
	return o
}

func purchaseBinding(id, productID, unitID int64, stock string) *productunit.ProductUnit {
	pu := productunit.NewProductUnit(productID, unitID)
	pu.ID = id
	pu.Stock = types.MustQuantity(stock)
	pu.IsPurchaseUnit = true
	return pu
}

type fixture struct {
	svc       *Service
	repo      *memPORepo
	orderRepo *memOrderRepo
	spawner   *spawnerStub
}

func newFixture(prices map[int64]types.Money, orders ...*order.ClientOrder) *fixture {
	orderRepo := newMemOrderRepo(orders...)
	bindings := &bindingRepoStub{units: []*productunit.ProductUnit{
		purchaseBinding(101, 1, 10, "0"),
		purchaseBinding(201, 2, 10, "0"),
	}}
	suggester := suggestion.NewService(orderRepo, bindings, conversionRepoStub{})

	repo := newMemPORepo()
	svc := NewService(repo, orderRepo, suggester, &priceRepoStub{latest: prices},
		testNumerator(), fakeTxManager{})
	spawner := &spawnerStub{}
	svc.SetSpawner(spawner)

	return &fixture{svc: svc, repo: repo, orderRepo: orderRepo, spawner: spawner}
}

// --- tests ---

func TestCreateFromDemand(t *testing.T) {
	ctx := context.Background()
	f := newFixture(
		map[int64]types.Money{101: types.MustMoney("120")},
		pendingOrder(1, 101, "10"),
		pendingOrder(2, 101, "5"),
		pendingOrder(3, 201, "2"),
	)

	po, err := f.svc.CreateFromDemand(ctx)
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, po.Status)
	assert.True(t, strings.HasPrefix(po.Number, "OC-"), "number = %s", po.Number)
	assert.ElementsMatch(t, []int64{1, 2, 3}, po.SweptOrderIDs)

	require.Len(t, po.Lines, 2)
	byPU := make(map[int64]Line)
	for _, l := range po.Lines {
		byPU[l.ProductUnitID] = l
	}
	assert.True(t, byPU[101].SuggestedQty.Equal(types.MustQuantity("15")))
	require.NotNil(t, byPU[101].EstimatedPrice)
	assert.True(t, byPU[101].EstimatedPrice.Equal(types.MustMoney("120")))
	assert.Nil(t, byPU[201].EstimatedPrice, "never-bought line has no estimate")

	// 15 * 120; the unpriced line contributes zero
	assert.True(t, po.EstimatedTotal.Equal(types.MustMoney("1800")))

	for _, id := range []int64{1, 2, 3} {
		o, err := f.orderRepo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, order.StatusInPurchasing, o.Status)
	}
}

func TestCreateFromDemand_NoDemand(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.CreateFromDemand(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}

func TestCreateFromDemand_SecondRunSeesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, pendingOrder(1, 101, "10"))

	_, err := f.svc.CreateFromDemand(ctx)
	require.NoError(t, err)

	// The first run swept the only pending order
	_, err = f.svc.CreateFromDemand(ctx)
	require.Error(t, err)
}

func TestConfirm_SpawnsPurchase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, pendingOrder(1, 101, "10"))

	po, err := f.svc.CreateFromDemand(ctx)
	require.NoError(t, err)

	confirmed, err := f.svc.Confirm(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, confirmed.Status)
	assert.Equal(t, []int64{po.ID}, f.spawner.calls)
}

func TestConfirm_WithoutSpawner(t *testing.T) {
	f := newFixture(nil, pendingOrder(1, 101, "10"))
	f.svc.SetSpawner(nil)

	po, err := f.svc.CreateFromDemand(context.Background())
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), po.ID)
	require.Error(t, err)
}

func TestCancel_RevertsSweptOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, pendingOrder(1, 101, "10"), pendingOrder(2, 101, "5"))

	po, err := f.svc.CreateFromDemand(ctx)
	require.NoError(t, err)

	// Order 2 progressed past in_purchasing before the cancel
	o2, _ := f.orderRepo.GetByID(ctx, 2)
	require.NoError(t, o2.MarkInProgress())

	cancelled, err := f.svc.Cancel(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	o1, _ := f.orderRepo.GetByID(ctx, 1)
	assert.Equal(t, order.StatusPending, o1.Status)
	assert.Equal(t, order.StatusInProgress, o2.Status, "progressed order stays untouched")
}

func TestCancel_InProgressRequiresPurchaseCancelFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, pendingOrder(1, 101, "10"))

	po, err := f.svc.CreateFromDemand(ctx)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, po.ID)
	require.NoError(t, err)

	// A spawned purchase still exists; the document is not cancellable yet.
	_, err = f.svc.Cancel(ctx, po.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))

	got, err := f.svc.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got.Status)

	// Cancelling the purchase returns the document to confirmed,
	// from where cancel is legal again.
	require.NoError(t, f.svc.RevertPurchaseProgress(ctx, po.ID))
	cancelled, err := f.svc.Cancel(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	o1, _ := f.orderRepo.GetByID(ctx, 1)
	assert.Equal(t, order.StatusPending, o1.Status)
}

func TestCancel_TerminalIsFinal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, pendingOrder(1, 101, "10"))

	po, err := f.svc.CreateFromDemand(ctx)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, po.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, po.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestUpdateLine_DraftOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, pendingOrder(1, 101, "10"))

	po, err := f.svc.CreateFromDemand(ctx)
	require.NoError(t, err)
	lineID := po.Lines[0].LineID

	updated, err := f.svc.UpdateLine(ctx, po.ID, lineID, types.MustQuantity("25"))
	require.NoError(t, err)
	assert.True(t, updated.Lines[0].SuggestedQty.Equal(types.MustQuantity("25")))

	_, err = f.svc.Confirm(ctx, po.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateLine(ctx, po.ID, lineID, types.MustQuantity("30"))
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestDeleteLine_RenumbersRest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, pendingOrder(1, 101, "10"), pendingOrder(2, 201, "4"))

	po, err := f.svc.CreateFromDemand(ctx)
	require.NoError(t, err)
	require.Len(t, po.Lines, 2)

	updated, err := f.svc.DeleteLine(ctx, po.ID, po.Lines[0].LineID)
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, 1, updated.Lines[0].LineNo)
}

func TestRecordPurchaseProgress_Completes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, pendingOrder(1, 101, "10"))

	po, err := f.svc.CreateFromDemand(ctx)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, po.ID)
	require.NoError(t, err)

	purchased := map[int64]types.Quantity{101: types.MustQuantity("12")}
	require.NoError(t, f.svc.RecordPurchaseProgress(ctx, po.ID, purchased))

	got, err := f.svc.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	require.NotNil(t, got.Lines[0].PurchasedQty)
	assert.True(t, got.Lines[0].PurchasedQty.Equal(types.MustQuantity("12")))
}

func TestRevertPurchaseProgress_ReturnsToConfirmed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, pendingOrder(1, 101, "10"))

	po, err := f.svc.CreateFromDemand(ctx)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, po.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.RevertPurchaseProgress(ctx, po.ID))

	got, err := f.svc.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
	assert.Nil(t, got.Lines[0].PurchasedQty)
}

func TestRevertPurchaseProgress_CompletedIsFinal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, pendingOrder(1, 101, "10"))

	po, err := f.svc.CreateFromDemand(ctx)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, po.ID)
	require.NoError(t, err)
	purchased := map[int64]types.Quantity{101: types.MustQuantity("12")}
	require.NoError(t, f.svc.RecordPurchaseProgress(ctx, po.ID, purchased))

	err = f.svc.RevertPurchaseProgress(ctx, po.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}
