package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"verduleria/internal/core/apperror"
	"verduleria/internal/domain/purchaseorder"
	"verduleria/internal/infrastructure/http/v1/dto"
)

// PurchaseOrderHandler handles purchase-order endpoints.
type PurchaseOrderHandler struct {
	*BaseHandler
	service *purchaseorder.Service
}

// NewPurchaseOrderHandler creates a purchase-order handler.
func NewPurchaseOrderHandler(base *BaseHandler, service *purchaseorder.Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{BaseHandler: base, service: service}
}

// CreateFromDemand handles POST /purchase-orders.
// Aggregates pending demand, prices it from purchase history and sweeps
// the snapshot orders into in_purchasing.
func (h *PurchaseOrderHandler) CreateFromDemand(c *gin.Context) {
	po, err := h.service.CreateFromDemand(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(201, po)
}

// Get handles GET /purchase-orders/:id.
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	po, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, po)
}

// Print handles GET /purchase-orders/:id/print.
// Flattened model with resolved product, supplier and unit names.
func (h *PurchaseOrderHandler) Print(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	model, err := h.service.GetPrintModel(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, model)
}

// List handles GET /purchase-orders.
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	filter := purchaseorder.ListFilter{
		Status: purchaseorder.Status(c.Query("status")),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	pos, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": pos})
}

// UpdateLine handles PUT /purchase-orders/:id/lines/:lineId.
// Only drafts are editable.
func (h *PurchaseOrderHandler) UpdateLine(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	lineID, ok := h.parseLineID(c)
	if !ok {
		return
	}

	var req dto.UpdatePurchaseOrderLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	po, err := h.service.UpdateLine(c.Request.Context(), id, lineID, req.SuggestedQty)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, po)
}

// DeleteLine handles DELETE /purchase-orders/:id/lines/:lineId.
func (h *PurchaseOrderHandler) DeleteLine(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	lineID, ok := h.parseLineID(c)
	if !ok {
		return
	}

	po, err := h.service.DeleteLine(c.Request.Context(), id, lineID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, po)
}

// Confirm handles POST /purchase-orders/:id/confirm.
// Confirmation spawns the backing purchase document.
func (h *PurchaseOrderHandler) Confirm(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	po, err := h.service.Confirm(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, po)
}

// Cancel handles POST /purchase-orders/:id/cancel.
// Swept orders still in_purchasing revert to pending.
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	po, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, po)
}

func (h *PurchaseOrderHandler) parseLineID(c *gin.Context) (uuid.UUID, bool) {
	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid line id format").WithDetail("lineId", c.Param("lineId")))
		return uuid.Nil, false
	}
	return lineID, true
}
