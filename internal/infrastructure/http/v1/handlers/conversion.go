package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"verduleria/internal/core/apperror"
	"verduleria/internal/domain/conversion"
	"verduleria/internal/infrastructure/http/v1/dto"
)

// ConversionHandler handles unit-conversion endpoints.
type ConversionHandler struct {
	*BaseHandler
	service *conversion.Service
}

// NewConversionHandler creates a conversion handler.
func NewConversionHandler(base *BaseHandler, service *conversion.Service) *ConversionHandler {
	return &ConversionHandler{BaseHandler: base, service: service}
}

// Create handles POST /conversions.
// Stores the direct edge and its inverse in one transaction.
func (h *ConversionHandler) Create(c *gin.Context) {
	var req dto.CreateConversionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	conv, err := h.service.Create(c.Request.Context(),
		req.ProductID, req.OriginUnitID, req.DestUnitID, req.Factor)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(201, dto.FromConversion(conv))
}

// Update handles PUT /conversions/:id.
func (h *ConversionHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateConversionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Update(c.Request.Context(), id, req.Factor); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "conversion updated")
}

// Delete handles DELETE /conversions/:id.
func (h *ConversionHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// ListByProduct handles GET /products/:id/conversions.
func (h *ConversionHandler) ListByProduct(c *gin.Context) {
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}

	convs, err := h.service.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromConversions(convs)})
}

// Convert handles GET /conversions/convert.
// Query: productId, originUnitId, destUnitId, quantity.
func (h *ConversionHandler) Convert(c *gin.Context) {
	productID := h.ParseInt64Query(c, "productId")
	originUnitID := h.ParseInt64Query(c, "originUnitId")
	destUnitID := h.ParseInt64Query(c, "destUnitId")
	if productID == nil || originUnitID == nil || destUnitID == nil {
		h.Error(c, apperror.NewValidation("productId, originUnitId and destUnitId are required"))
		return
	}

	qty, err := decimal.NewFromString(c.DefaultQuery("quantity", "1"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid quantity").WithDetail("quantity", c.Query("quantity")))
		return
	}

	converted, err := h.service.Convert(c.Request.Context(), *productID, qty, *originUnitID, *destUnitID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ConvertResponse{
		ProductID:    *productID,
		OriginUnitID: *originUnitID,
		DestUnitID:   *destUnitID,
		Quantity:     qty,
		Converted:    converted,
	})
}
