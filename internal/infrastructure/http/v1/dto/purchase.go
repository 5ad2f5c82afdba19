package dto

import (
	"github.com/shopspring/decimal"
)

// PurchaseLineRequest is one bought item.
type PurchaseLineRequest struct {
	ProductUnitID int64           `json:"productUnitId" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice     decimal.Decimal `json:"unitPrice" binding:"required"`
}

// CreatePurchaseRequest registers a manual purchase.
type CreatePurchaseRequest struct {
	Lines []PurchaseLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdatePurchaseLineRequest adjusts a pending purchase line.
type UpdatePurchaseLineRequest struct {
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice" binding:"required"`
}
