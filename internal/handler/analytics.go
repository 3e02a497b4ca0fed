package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/cafe-pickup/api/internal/service"
	"github.com/go-chi/chi/v5"
)

// AnalyticsServicer defines the service methods needed by analytics handlers.
// Satisfied by *service.AnalyticsService; narrow interface for testability.
type AnalyticsServicer interface {
	PopularItems(ctx context.Context) ([]service.PopularItem, error)
	OrdersByTimeSlot(ctx context.Context) ([]service.TimeSlot, error)
}

// AnalyticsHandler handles analytics endpoints.
type AnalyticsHandler struct {
	svc AnalyticsServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(svc AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// RegisterRoutes registers analytics endpoints on the given Chi router.
// Expected to be mounted at /api/analytics.
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/popular-items", h.PopularItems)
	r.Get("/time-slots", h.TimeSlots)
}

// PopularItems returns ordered quantities per menu item, most ordered first.
func (h *AnalyticsHandler) PopularItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.PopularItems(r.Context())
	if err != nil {
		log.Printf("ERROR: popular items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if items == nil {
		items = []service.PopularItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// TimeSlots returns order counts per pickup time.
func (h *AnalyticsHandler) TimeSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.svc.OrdersByTimeSlot(r.Context())
	if err != nil {
		log.Printf("ERROR: orders by time slot: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if slots == nil {
		slots = []service.TimeSlot{}
	}
	writeJSON(w, http.StatusOK, slots)
}
