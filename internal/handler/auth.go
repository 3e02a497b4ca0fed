package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cafe-pickup/api/internal/auth"
	"github.com/cafe-pickup/api/internal/database"
	"github.com/cafe-pickup/api/internal/enum"
	"github.com/cafe-pickup/api/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by database.Store; narrow interface for testability.
type AuthStore interface {
	GetUserByPhone(ctx context.Context, phone string) (database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
}

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	store        AuthStore
	sessions     *auth.SessionStore
	secret       string
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, sessions *auth.SessionStore, secret string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{store: store, sessions: sessions, secret: secret, cookieSecure: cookieSecure}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
// Expected to be mounted at /api.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.With(middleware.RequireAuth).Get("/user", h.CurrentUser)
	r.Post("/users", h.EnsureUser)
}

// --- Request types ---

type registerRequest struct {
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Email    *string `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type ensureUserRequest struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email"`
}

// --- Handlers ---

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and phone are required"})
		return
	}
	if req.Role == "" {
		req.Role = enum.UserRoleCustomer
	}
	if req.Role != enum.UserRoleCustomer && req.Role != enum.UserRoleKitchenStaff {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
		return
	}

	var hashed *string
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			log.Printf("ERROR: hash password: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		hashed = &hash
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		HashedPassword: hashed,
		Role:           req.Role,
	})
	if err != nil {
		if errors.Is(err, database.ErrPhoneTaken) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "phone already registered"})
			return
		}
		log.Printf("ERROR: create user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if !h.startSession(w, user.ID) {
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/login with phone + password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Phone = strings.TrimSpace(req.Phone)
	if req.Phone == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone and password are required"})
		return
	}

	user, err := h.store.GetUserByPhone(r.Context(), req.Phone)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		log.Printf("ERROR: get user by phone: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if user.HashedPassword == nil || !auth.CheckPassword(*user.HashedPassword, req.Password) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	if !h.startSession(w, user.ID) {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/logout. It always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromContext(r.Context()); sess != nil {
		h.sessions.Delete(sess.ID)
	} else if tokenStr := middleware.TokenFromRequest(r); tokenStr != "" {
		if claims, err := auth.ValidateToken(h.secret, tokenStr); err == nil {
			h.sessions.Delete(claims.SessionID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// CurrentUser handles GET /api/user.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.UserFromContext(r.Context()))
}

// EnsureUser handles POST /api/users. Returns the user registered under the
// phone, creating a password-less customer if there is none.
func (h *AuthHandler) EnsureUser(w http.ResponseWriter, r *http.Request) {
	var req ensureUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and phone are required"})
		return
	}

	user, err := h.store.GetUserByPhone(r.Context(), req.Phone)
	if err == nil {
		writeJSON(w, http.StatusOK, user)
		return
	}
	if !errors.Is(err, database.ErrNotFound) {
		log.Printf("ERROR: get user by phone: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	user, err = h.store.CreateUser(r.Context(), database.CreateUserParams{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
		Role:  enum.UserRoleCustomer,
	})
	if errors.Is(err, database.ErrPhoneTaken) {
		// Lost a race with a concurrent registration.
		user, err = h.store.GetUserByPhone(r.Context(), req.Phone)
	}
	if err != nil {
		log.Printf("ERROR: ensure user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// --- Helpers ---

// startSession creates a server-side session for userID and sets the signed
// session cookie. Reports false after writing an error response.
func (h *AuthHandler) startSession(w http.ResponseWriter, userID int64) bool {
	sess := h.sessions.Create(userID)
	token, err := auth.GenerateToken(h.secret, sess.ID, userID, sess.ExpiresAt)
	if err != nil {
		h.sessions.Delete(sess.ID)
		log.Printf("ERROR: generate session token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
