// Package suggestion provides the demand-aggregation and purchase-suggestion
// engine: it reads all pending client-order demand, normalizes heterogeneous
// unit quantities into each product's purchasing unit, and nets the result
// against current stock.
package suggestion

import (
	"verduleria/internal/core/types"
)

// Suggestion is one proposed purchase line.
type Suggestion struct {
	ProductUnitID int64 `json:"productUnitId"`
	ProductID     int64 `json:"productId"`
	UnitID        int64 `json:"unitId"`

	// NeededQty is the aggregated demand expressed in this unit
	NeededQty types.Quantity `json:"neededQty"`

	// StockQty is the current stock in this unit
	StockQty types.Quantity `json:"stockQty"`

	// SuggestedQty = max(0, NeededQty - StockQty); always positive in output
	SuggestedQty types.Quantity `json:"suggestedQty"`

	// Unresolved marks demand that could not be converted into the
	// product's purchase unit because no edge exists. It is emitted
	// separately rather than dropped.
	Unresolved bool `json:"unresolved"`
}

// Result is the outcome of one aggregation run.
type Result struct {
	Suggestions []Suggestion `json:"suggestions"`

	// OrderIDs is the demand snapshot: the pending orders this run saw.
	// Purchase-order creation flips exactly these orders.
	OrderIDs []int64 `json:"orderIds"`
}
