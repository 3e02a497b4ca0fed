package router

import (
	"log"
	"net/http"

	"github.com/cafe-pickup/api/internal/auth"
	"github.com/cafe-pickup/api/internal/config"
	"github.com/cafe-pickup/api/internal/database"
	"github.com/cafe-pickup/api/internal/events"
	"github.com/cafe-pickup/api/internal/handler"
	mw "github.com/cafe-pickup/api/internal/middleware"
	"github.com/cafe-pickup/api/internal/service"
	"github.com/cafe-pickup/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New creates a Chi router with all application routes wired up.
// Every request passes through session loading; role checks are applied
// per route by the handlers.
func New(cfg *config.Config, store database.Store, sessions *auth.SessionStore, hub *ws.Hub, pub events.Publisher) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Use(mw.LoadSession(cfg.SessionSecret, sessions, store))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Live order updates for logged-in users
	r.With(mw.RequireAuth).Method(http.MethodGet, "/ws/orders", ws.NewHandler(hub, cfg.AllowedOrigins))

	orderService := service.NewOrderService(store, pub)
	paymentService := service.NewPaymentService(store, pub)
	analyticsService := service.NewAnalyticsService(store)

	r.Route("/api", func(r chi.Router) {
		authHandler := handler.NewAuthHandler(store, sessions, cfg.SessionSecret, cfg.CookieSecure)
		authHandler.RegisterRoutes(r)

		menuHandler := handler.NewMenuHandler(store)
		r.Route("/menu", menuHandler.RegisterRoutes)

		orderHandler := handler.NewOrderHandler(orderService)
		paymentHandler := handler.NewPaymentHandler(paymentService)
		r.Route("/orders", func(r chi.Router) {
			orderHandler.RegisterRoutes(r)
			paymentHandler.RegisterRoutes(r)
		})

		analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
		r.Route("/analytics", analyticsHandler.RegisterRoutes)

		notificationHandler := handler.NewNotificationHandler(store)
		r.Route("/notifications", notificationHandler.RegisterRoutes)
	})

	log.Println("Router initialized with all handlers")
	return r
}
