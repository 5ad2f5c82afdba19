package suggestion

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/types"
	"verduleria/internal/domain/conversion"
	"verduleria/internal/domain/order"
	"verduleria/internal/domain/productunit"
	"verduleria/pkg/logger"
)

// Service computes purchase suggestions from pending demand.
// It is a pure read-side computation: no state is mutated.
type Service struct {
	orders      order.Repository
	bindings    productunit.Repository
	conversions conversion.Repository
}

// NewService creates a new suggestion service.
func NewService(orders order.Repository, bindings productunit.Repository, conversions conversion.Repository) *Service {
	return &Service{
		orders:      orders,
		bindings:    bindings,
		conversions: conversions,
	}
}

// Aggregate runs the demand-aggregation algorithm over all pending orders.
func (s *Service) Aggregate(ctx context.Context) (*Result, error) {
	pending, err := s.orders.ListPendingWithLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}

	result := &Result{
		Suggestions: make([]Suggestion, 0),
		OrderIDs:    make([]int64, 0, len(pending)),
	}
	if len(pending) == 0 {
		return result, nil
	}

	// Resolve order lines (productUnitID) into (product, unit) pairs
	puIDs := make([]int64, 0)
	seen := make(map[int64]bool)
	for _, o := range pending {
		result.OrderIDs = append(result.OrderIDs, o.ID)
		for _, line := range o.Lines {
			if !seen[line.ProductUnitID] {
				seen[line.ProductUnitID] = true
				puIDs = append(puIDs, line.ProductUnitID)
			}
		}
	}

	referenced, err := s.bindings.GetByIDs(ctx, puIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve product units: %w", err)
	}
	byID := make(map[int64]*productunit.ProductUnit, len(referenced))
	for _, pu := range referenced {
		byID[pu.ID] = pu
	}

	// need[productID][unitID] = summed demand
	need := make(map[int64]map[int64]types.Quantity)
	for _, o := range pending {
		for _, line := range o.Lines {
			pu, ok := byID[line.ProductUnitID]
			if !ok {
				// Upstream data gap, not a core invariant violation
				logger.Warn(ctx, "order line references unknown product unit",
					"order_id", o.ID,
					"product_unit_id", line.ProductUnitID)
				continue
			}
			if need[pu.ProductID] == nil {
				need[pu.ProductID] = make(map[int64]types.Quantity)
			}
			current, ok := need[pu.ProductID][pu.UnitID]
			if !ok {
				current = decimal.Zero
			}
			need[pu.ProductID][pu.UnitID] = current.Add(line.Quantity)
		}
	}

	// Deterministic product order for stable output
	productIDs := make([]int64, 0, len(need))
	for productID := range need {
		productIDs = append(productIDs, productID)
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	for _, productID := range productIDs {
		suggestions, err := s.suggestForProduct(ctx, productID, need[productID])
		if err != nil {
			return nil, err
		}
		result.Suggestions = append(result.Suggestions, suggestions...)
	}

	return result, nil
}

// suggestForProduct converts one product's per-unit demand into suggestions.
func (s *Service) suggestForProduct(ctx context.Context, productID int64, demand map[int64]types.Quantity) ([]Suggestion, error) {
	all, err := s.bindings.GetByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("bindings for product %d: %w", productID, err)
	}
	if len(all) == 0 {
		logger.Warn(ctx, "product with demand has no unit bindings, skipping",
			"product_id", productID)
		return nil, nil
	}

	byUnit := make(map[int64]*productunit.ProductUnit, len(all))
	var purchase *productunit.ProductUnit
	for _, pu := range all {
		byUnit[pu.UnitID] = pu
		if pu.IsPurchaseUnit {
			purchase = pu
		}
	}

	unitIDs := make([]int64, 0, len(demand))
	for unitID := range demand {
		unitIDs = append(unitIDs, unitID)
	}
	sort.Slice(unitIDs, func(i, j int) bool { return unitIDs[i] < unitIDs[j] })

	out := make([]Suggestion, 0)

	if purchase == nil {
		// No designated purchase unit: suggest per demanded unit directly
		for _, unitID := range unitIDs {
			if sug, ok := s.netAgainstStock(productID, unitID, byUnit, demand[unitID], false); ok {
				out = append(out, sug)
			}
		}
		return out, nil
	}

	totalInP := decimal.Zero
	for _, unitID := range unitIDs {
		qty := demand[unitID]
		if unitID == purchase.UnitID {
			totalInP = totalInP.Add(qty)
			continue
		}

		converted, err := s.toPurchaseUnit(ctx, productID, qty, unitID, purchase.UnitID)
		if err != nil {
			if apperror.IsNoConversionFound(err) {
				// No edge at all: keep the demand visible on its own line
				logger.Warn(ctx, "demand in unit without conversion to purchase unit",
					"product_id", productID,
					"unit_id", unitID,
					"purchase_unit_id", purchase.UnitID)
				if sug, ok := s.netAgainstStock(productID, unitID, byUnit, qty, true); ok {
					out = append(out, sug)
				}
				continue
			}
			return nil, err
		}
		totalInP = totalInP.Add(converted)
	}

	needed := totalInP
	suggested := needed.Sub(purchase.Stock)
	if suggested.IsPositive() {
		out = append(out, Suggestion{
			ProductUnitID: purchase.ID,
			ProductID:     productID,
			UnitID:        purchase.UnitID,
			NeededQty:     needed,
			StockQty:      purchase.Stock,
			SuggestedQty:  suggested,
		})
	}

	return out, nil
}

// toPurchaseUnit resolves qty from unitID into the purchase unit.
// Tries the direct edge first, then the stored inverse with division.
func (s *Service) toPurchaseUnit(ctx context.Context, productID int64, qty types.Quantity, unitID, purchaseUnitID int64) (types.Quantity, error) {
	direct, err := s.conversions.GetEdge(ctx, productID, unitID, purchaseUnitID)
	if err == nil {
		return direct.Apply(qty), nil
	}
	if !apperror.IsNotFound(err) {
		return types.Zero(), fmt.Errorf("lookup edge: %w", err)
	}

	inverse, err := s.conversions.GetEdge(ctx, productID, purchaseUnitID, unitID)
	if err == nil {
		return qty.DivRound(inverse.Factor, 12), nil
	}
	if !apperror.IsNotFound(err) {
		return types.Zero(), fmt.Errorf("lookup inverse edge: %w", err)
	}

	return types.Zero(), apperror.NewNoConversionFound(productID, unitID, purchaseUnitID)
}

// netAgainstStock builds a suggestion for a unit using its own stock.
// Returns false when demand is fully covered.
func (s *Service) netAgainstStock(productID, unitID int64, byUnit map[int64]*productunit.ProductUnit, needed types.Quantity, unresolved bool) (Suggestion, bool) {
	pu, ok := byUnit[unitID]
	if !ok {
		return Suggestion{}, false
	}

	suggested := needed.Sub(pu.Stock)
	if !suggested.IsPositive() {
		return Suggestion{}, false
	}

	return Suggestion{
		ProductUnitID: pu.ID,
		ProductID:     productID,
		UnitID:        unitID,
		NeededQty:     needed,
		StockQty:      pu.Stock,
		SuggestedQty:  suggested,
		Unresolved:    unresolved,
	}, true
}
