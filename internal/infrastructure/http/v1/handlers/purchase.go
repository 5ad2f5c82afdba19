package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"verduleria/internal/core/apperror"
	"verduleria/internal/domain/purchase"
	"verduleria/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler handles purchase endpoints.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

// NewPurchaseHandler creates a purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service}
}

// Create handles POST /purchases.
// Manual purchase, not linked to any purchase order.
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines := make([]purchase.LineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = purchase.LineInput{
			ProductUnitID: l.ProductUnitID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
		}
	}

	p, err := h.service.CreateManual(c.Request.Context(), lines)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(201, p)
}

// Get handles GET /purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// List handles GET /purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	filter := purchase.ListFilter{
		Status: purchase.Status(c.Query("status")),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	ps, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": ps})
}

// UpdateLine handles PUT /purchases/:id/lines/:lineId.
func (h *PurchaseHandler) UpdateLine(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	lineID, ok := h.parseLineID(c)
	if !ok {
		return
	}

	var req dto.UpdatePurchaseLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.UpdateLine(c.Request.Context(), id, lineID, req.Quantity, req.UnitPrice)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// DeleteLine handles DELETE /purchases/:id/lines/:lineId.
func (h *PurchaseHandler) DeleteLine(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	lineID, ok := h.parseLineID(c)
	if !ok {
		return
	}

	p, err := h.service.DeleteLine(c.Request.Context(), id, lineID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Confirm handles POST /purchases/:id/confirm.
// Confirmation enters stock and records purchase prices.
func (h *PurchaseHandler) Confirm(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	p, err := h.service.Confirm(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Cancel handles POST /purchases/:id/cancel.
// Cancelling a confirmed purchase reverses its stock and price entries.
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	p, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

func (h *PurchaseHandler) parseLineID(c *gin.Context) (uuid.UUID, bool) {
	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid line id format").WithDetail("lineId", c.Param("lineId")))
		return uuid.Nil, false
	}
	return lineID, true
}
