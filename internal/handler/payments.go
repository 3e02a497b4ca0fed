package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cafe-pickup/api/internal/database"
	"github.com/cafe-pickup/api/internal/service"
	"github.com/go-chi/chi/v5"
)

// PaymentServicer defines the service methods needed by payment handlers.
// Satisfied by *service.PaymentService; narrow interface for testability.
type PaymentServicer interface {
	RecordPayment(ctx context.Context, orderID int64, paymentType string, card service.Card) (service.PaymentResult, error)
	ListPayments(ctx context.Context, orderID int64) ([]database.Payment, error)
}

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	svc PaymentServicer
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc PaymentServicer) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// RegisterRoutes registers payment endpoints on the given Chi router.
// Expected to share the /api/orders router with OrderHandler.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{id}/payment", h.Pay)
	r.Get("/{id}/payments", h.List)
}

type paymentResponse struct {
	Success bool             `json:"success"`
	Payment database.Payment `json:"payment"`
	Order   database.Order   `json:"order"`
}

// Pay handles POST /api/orders/{id}/payment?type=prepayment|full_payment.
// The card is format-checked only.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r, "id", "invalid order ID")
	if !ok {
		return
	}

	var card service.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment data"})
		return
	}

	result, err := h.svc.RecordPayment(r.Context(), orderID, r.URL.Query().Get("type"), card)
	if err != nil {
		writeServiceError(w, "record payment", err)
		return
	}

	writeJSON(w, http.StatusOK, paymentResponse{
		Success: true,
		Payment: result.Payment,
		Order:   result.Order,
	})
}

// List handles GET /api/orders/{id}/payments.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r, "id", "invalid order ID")
	if !ok {
		return
	}

	payments, err := h.svc.ListPayments(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, "list payments", err)
		return
	}
	if payments == nil {
		payments = []database.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}
