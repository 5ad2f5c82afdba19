package dto

import (
	"github.com/shopspring/decimal"
)

// UpdatePurchaseOrderLineRequest adjusts a suggested quantity on a draft.
type UpdatePurchaseOrderLineRequest struct {
	SuggestedQty decimal.Decimal `json:"suggestedQty" binding:"required"`
}
