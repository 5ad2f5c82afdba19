package handlers

import (
	"github.com/gin-gonic/gin"

	"verduleria/internal/domain/productunit"
	"verduleria/internal/infrastructure/http/v1/dto"
)

// ProductUnitHandler handles product-unit binding endpoints.
type ProductUnitHandler struct {
	*BaseHandler
	service *productunit.Service
}

// NewProductUnitHandler creates a product-unit handler.
func NewProductUnitHandler(base *BaseHandler, service *productunit.Service) *ProductUnitHandler {
	return &ProductUnitHandler{BaseHandler: base, service: service}
}

// EnsureBinding handles POST /product-units.
// Creating an already existing binding returns the existing row.
func (h *ProductUnitHandler) EnsureBinding(c *gin.Context) {
	var req dto.EnsureBindingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pu, err := h.service.EnsureBinding(c.Request.Context(), req.ProductID, req.UnitID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProductUnit(pu))
}

// Get handles GET /product-units/:id.
func (h *ProductUnitHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	pu, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProductUnit(pu))
}

// ListByProduct handles GET /products/:id/units.
func (h *ProductUnitHandler) ListByProduct(c *gin.Context) {
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}

	pus, err := h.service.GetByProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromProductUnits(pus)})
}

// SetMargin handles PUT /product-units/:id/margin.
func (h *ProductUnitHandler) SetMargin(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.SetMarginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetMargin(c.Request.Context(), id, req.Margin); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "margin updated")
}

// DesignatePurchaseUnit handles POST /product-units/:id/purchase-unit.
func (h *ProductUnitHandler) DesignatePurchaseUnit(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.DesignatePurchaseUnit(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "purchase unit designated")
}

// ReleasePurchaseUnit handles DELETE /product-units/:id/purchase-unit.
func (h *ProductUnitHandler) ReleasePurchaseUnit(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.ReleasePurchaseUnit(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "purchase unit released")
}
