package handlers

import (
	"github.com/gin-gonic/gin"

	"verduleria/internal/domain/order"
	"verduleria/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles client-order endpoints.
type OrderHandler struct {
	*BaseHandler
	service *order.Service
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(base *BaseHandler, service *order.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// Create handles POST /orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines := make([]order.LineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = order.LineInput{
			ProductUnitID: l.ProductUnitID,
			Quantity:      l.Quantity,
		}
	}

	o, err := h.service.Create(c.Request.Context(), req.ClientID, lines)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(201, o)
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	o, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, o)
}

// List handles GET /orders.
// Query: clientId, status, limit, offset.
func (h *OrderHandler) List(c *gin.Context) {
	filter := order.ListFilter{
		ClientID: h.ParseInt64Query(c, "clientId"),
		Limit:    h.ParseIntQuery(c, "limit", 50),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}
	if s := c.Query("status"); s != "" {
		status := order.Status(s)
		filter.Status = &status
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
