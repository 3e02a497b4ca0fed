package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/cafe-pickup/api/internal/database"
	"github.com/cafe-pickup/api/internal/enum"
	"github.com/cafe-pickup/api/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// NotificationStore defines the database methods needed by notification handlers.
// Satisfied by database.Store; narrow interface for testability.
type NotificationStore interface {
	ListNotificationsByUser(ctx context.Context, userID int64) ([]database.Notification, error)
	GetNotification(ctx context.Context, id int64) (database.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) (database.Notification, error)
}

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	store NotificationStore
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(store NotificationStore) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// RegisterRoutes registers notification endpoints on the given Chi router.
// Expected to be mounted at /api/notifications.
func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.RequireAuth)
	// {id} is the user id here and the notification id below.
	r.Get("/{id}", h.List)
	r.Patch("/{id}/read", h.MarkRead)
}

// List handles GET /api/notifications/{userId}, newest first.
// Customers may only read their own; kitchen staff may read anyone's.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "id", "invalid user ID")
	if !ok {
		return
	}
	if !canAccess(r, userID) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
		return
	}

	list, err := h.store.ListNotificationsByUser(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR: list notifications: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if list == nil {
		list = []database.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}

// MarkRead handles PATCH /api/notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "invalid notification ID")
	if !ok {
		return
	}

	n, err := h.store.GetNotification(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "notification not found"})
			return
		}
		log.Printf("ERROR: get notification: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if !canAccess(r, n.UserID) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
		return
	}

	n, err = h.store.MarkNotificationRead(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "notification not found"})
			return
		}
		log.Printf("ERROR: mark notification read: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func canAccess(r *http.Request, ownerID int64) bool {
	user := middleware.UserFromContext(r.Context())
	return user != nil && (user.ID == ownerID || user.Role == enum.UserRoleKitchenStaff)
}
