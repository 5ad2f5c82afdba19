package handlers

import (
	"github.com/gin-gonic/gin"

	"verduleria/internal/domain/suggestion"
)

// SuggestionHandler exposes the purchase-suggestion engine.
type SuggestionHandler struct {
	*BaseHandler
	service *suggestion.Service
}

// NewSuggestionHandler creates a suggestion handler.
func NewSuggestionHandler(base *BaseHandler, service *suggestion.Service) *SuggestionHandler {
	return &SuggestionHandler{BaseHandler: base, service: service}
}

// Aggregate handles GET /suggestions.
// Read-only preview: nothing is swept, no document is created.
func (h *SuggestionHandler) Aggregate(c *gin.Context) {
	result, err := h.service.Aggregate(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"suggestions": result.Suggestions,
		"orderIds":    result.OrderIDs,
	})
}
