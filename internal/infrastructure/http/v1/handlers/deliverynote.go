package handlers

import (
	"github.com/gin-gonic/gin"

	"verduleria/internal/domain/deliverynote"
	"verduleria/internal/infrastructure/http/v1/dto"
)

// DeliveryNoteHandler handles delivery-note endpoints.
type DeliveryNoteHandler struct {
	*BaseHandler
	service *deliverynote.Service
}

// NewDeliveryNoteHandler creates a delivery-note handler.
func NewDeliveryNoteHandler(base *BaseHandler, service *deliverynote.Service) *DeliveryNoteHandler {
	return &DeliveryNoteHandler{BaseHandler: base, service: service}
}

// SuggestedPrices handles GET /orders/:id/suggested-prices.
// Margin-over-last-cost proposals for each order line.
func (h *DeliveryNoteHandler) SuggestedPrices(c *gin.Context) {
	orderID, ok := h.ParseID(c)
	if !ok {
		return
	}

	prices, err := h.service.SuggestedPrices(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": prices})
}

// Create handles POST /delivery-notes.
// Fixes prices on the order and records client price history.
func (h *DeliveryNoteHandler) Create(c *gin.Context) {
	var req dto.CreateDeliveryNoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	prices := make([]deliverynote.LinePrice, len(req.Prices))
	for i, p := range req.Prices {
		prices[i] = deliverynote.LinePrice{
			OrderLineID: p.OrderLineID,
			UnitPrice:   p.UnitPrice,
		}
	}

	note, err := h.service.Create(c.Request.Context(), req.OrderID, prices)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(201, note)
}

// Get handles GET /delivery-notes/:id.
func (h *DeliveryNoteHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	note, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, note)
}

// List handles GET /delivery-notes.
func (h *DeliveryNoteHandler) List(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 50)
	offset := h.ParseIntQuery(c, "offset", 0)

	notes, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": notes})
}

// ConfirmDelivery handles POST /delivery-notes/:id/deliver.
// This is the moment stock leaves.
func (h *DeliveryNoteHandler) ConfirmDelivery(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	note, err := h.service.ConfirmDelivery(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, note)
}

// Void handles DELETE /delivery-notes/:id.
// Only undelivered notes can be voided; the order reverts to pending.
func (h *DeliveryNoteHandler) Void(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Void(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Print handles GET /delivery-notes/:id/print.
// Flattened model with resolved product, unit and client names.
func (h *DeliveryNoteHandler) Print(c *gin.Context) {
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
