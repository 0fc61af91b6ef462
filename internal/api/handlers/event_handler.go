package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/storefront-be/internal/apperr"
	"github.com/isdelr/storefront-be/internal/httpx"
	"github.com/isdelr/storefront-be/internal/services"
	"github.com/rs/zerolog/log"
)

// EventHandler handles HTTP requests related to the activity log.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent handles the request to get recent activity/events.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = services.DefaultEventLimit
	}

	events, err := h.service.GetRecentEvents(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve events")
		httpx.Error(w, apperr.Internal("failed to retrieve events", err))
		return
	}
	httpx.JSON(w, http.StatusOK, events)
}
