package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/cafe-pickup/api/internal/auth"
	"github.com/cafe-pickup/api/internal/database"
	"github.com/cafe-pickup/api/internal/handler"
	"github.com/cafe-pickup/api/internal/middleware"
	"github.com/go-chi/chi/v5"
)

type notificationEnv struct {
	store    *database.Memory
	sessions *auth.SessionStore
	router   *chi.Mux
}

func setupNotificationRouter(t *testing.T) *notificationEnv {
	t.Helper()
	env := &notificationEnv{
		store:    database.NewMemory(),
		sessions: auth.NewSessionStore(time.Hour),
		router:   chi.NewRouter(),
	}
	env.router.Use(middleware.LoadSession(testSecret, env.sessions, env.store))
	env.router.Route("/notifications", handler.NewNotificationHandler(env.store).RegisterRoutes)
	return env
}

func (env *notificationEnv) notify(t *testing.T, userID int64, msg string) database.Notification {
	t.Helper()
	n, err := env.store.CreateNotification(context.Background(), database.CreateNotificationParams{
		UserID: userID, OrderID: 1, Type: "status_changed", Message: msg,
	})
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}
	return n
}

func TestListNotifications(t *testing.T) {
	env := setupNotificationRouter(t)
	owner, ownerCookie := loginAs(t, env.store, env.sessions, "+1", "customer")
	_, otherCookie := loginAs(t, env.store, env.sessions, "+2", "customer")
	_, kitchen := loginAs(t, env.store, env.sessions, "+3", "kitchen_staff")

	env.notify(t, owner.ID, "Order #1 is now preparing")
	env.notify(t, owner.ID, "Order #1 is now ready")
	path := fmt.Sprintf("/notifications/%d", owner.ID)

	tests := []struct {
		name     string
		cookies  []*http.Cookie
		wantCode int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"other customer", []*http.Cookie{otherCookie}, http.StatusForbidden},
		{"owner", []*http.Cookie{ownerCookie}, http.StatusOK},
		{"kitchen staff", []*http.Cookie{kitchen}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(env.router, "GET", path, nil, tt.cookies...)
			if rr.Code != tt.wantCode {
				t.Fatalf("status: got %d, want %d; body: %s", rr.Code, tt.wantCode, rr.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var list []database.Notification
			json.NewDecoder(rr.Body).Decode(&list)
			if len(list) != 2 {
				t.Fatalf("got %d notifications, want 2", len(list))
			}
			if list[0].Message != "Order #1 is now ready" {
				t.Errorf("expected newest first, got %q", list[0].Message)
			}
		})
	}
}

func TestListNotifications_EmptyIsArray(t *testing.T) {
	env := setupNotificationRouter(t)
	user, cookie := loginAs(t, env.store, env.sessions, "+1", "customer")

	rr := doJSON(env.router, "GET", fmt.Sprintf("/notifications/%d", user.ID), nil, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if body := rr.Body.String(); body != "[]\n" {
		t.Errorf("body: got %q, want []", body)
	}
}

func TestMarkNotificationRead(t *testing.T) {
	env := setupNotificationRouter(t)
	owner, ownerCookie := loginAs(t, env.store, env.sessions, "+1", "customer")
	_, otherCookie := loginAs(t, env.store, env.sessions, "+2", "customer")
	n := env.notify(t, owner.ID, "Order #1 is now ready")
	path := fmt.Sprintf("/notifications/%d/read", n.ID)

	if rr := doJSON(env.router, "PATCH", path, nil, otherCookie); rr.Code != http.StatusForbidden {
		t.Fatalf("other customer: got %d, want %d", rr.Code, http.StatusForbidden)
	}

	rr := doJSON(env.router, "PATCH", path, nil, ownerCookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("owner: got %d; body: %s", rr.Code, rr.Body.String())
	}
	var got database.Notification
	json.NewDecoder(rr.Body).Decode(&got)
	if got.Status != "read" {
		t.Errorf("status: got %q, want read", got.Status)
	}

	if rr := doJSON(env.router, "PATCH", "/notifications/999/read", nil, ownerCookie); rr.Code != http.StatusNotFound {
		t.Errorf("missing: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
