package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/cafe-pickup/api/internal/database"
	"github.com/cafe-pickup/api/internal/enum"
	"github.com/cafe-pickup/api/internal/middleware"
	"github.com/cafe-pickup/api/internal/service"
	"github.com/go-chi/chi/v5"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (database.Order, error)
	ListOrders(ctx context.Context, status string) ([]database.Order, error)
	GetOrder(ctx context.Context, id int64) (database.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) (database.Order, error)
	AdvanceStatus(ctx context.Context, id int64) (database.Order, error)
	CancelOrder(ctx context.Context, id int64) (database.Order, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc OrderServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /api/orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(enum.UserRoleKitchenStaff))
		r.Get("/", h.List)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Post("/{id}/advance", h.Advance)
		r.Delete("/{id}", h.Cancel)
	})
}

// --- Request types ---

type createOrderRequest struct {
	UserID              *int64               `json:"userId"`
	Items               []database.OrderItem `json:"items"`
	Total               int64                `json:"total"`
	PickupTime          string               `json:"pickupTime"`
	SpecialInstructions string               `json:"specialInstructions"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// --- Handlers ---

// Create handles POST /api/orders. A logged-in caller owns the order
// regardless of any userId in the body.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	userID := req.UserID
	if user := middleware.UserFromContext(r.Context()); user != nil {
		userID = &user.ID
	}

	order, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		UserID:              userID,
		Items:               req.Items,
		Total:               req.Total,
		PickupTime:          req.PickupTime,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		writeServiceError(w, "create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders, newest first. Supports ?status=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, "list orders", err)
		return
	}
	if orders == nil {
		orders = []database.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// Get handles GET /api/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "invalid order ID")
	if !ok {
		return
	}

	order, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "invalid order ID")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, "update order status", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Advance handles POST /api/orders/{id}/advance.
func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "invalid order ID")
	if !ok {
		return
	}

	order, err := h.svc.AdvanceStatus(r.Context(), id)
	if err != nil {
		writeServiceError(w, "advance order", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Cancel handles DELETE /api/orders/{id}.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "invalid order ID")
	if !ok {
		return
	}

	order, err := h.svc.CancelOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, "cancel order", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// --- Helpers ---

// writeServiceError maps service errors to status codes. Unknown errors are
// logged with op and reported as 500.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case isValidationError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	case isConflictError(err):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// isValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrItemNotAvailable) ||
		errors.Is(err, service.ErrInvalidPickupTime) ||
		errors.Is(err, service.ErrTotalMismatch) ||
		errors.Is(err, service.ErrInvalidStatus) ||
		errors.Is(err, service.ErrUnknownUser) ||
		errors.Is(err, service.ErrInvalidPaymentType) ||
		errors.Is(err, service.ErrInvalidCardNumber) ||
		errors.Is(err, service.ErrInvalidExpiry) ||
		errors.Is(err, service.ErrInvalidCVV) ||
		errors.Is(err, service.ErrMissingPaymentMethod)
}

// isConflictError checks if the error means the order is in a state that
// does not allow the request: 409 Conflict.
func isConflictError(err error) bool {
	return errors.Is(err, service.ErrCannotAdvance) ||
		errors.Is(err, service.ErrCannotCancel) ||
		errors.Is(err, service.ErrOrderCancelled) ||
		errors.Is(err, service.ErrAlreadyPaid) ||
		errors.Is(err, service.ErrAlreadyPrepaid)
}
