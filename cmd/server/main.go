package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cafe-pickup/api/internal/auth"
	"github.com/cafe-pickup/api/internal/config"
	"github.com/cafe-pickup/api/internal/database"
	"github.com/cafe-pickup/api/internal/events"
	"github.com/cafe-pickup/api/internal/mq"
	"github.com/cafe-pickup/api/internal/router"
	"github.com/cafe-pickup/api/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	if cfg.SeedMenu {
		n, err := database.Seed(ctx, store)
		if err != nil {
			log.Fatalf("Failed to seed menu: %v", err)
		}
		if n > 0 {
			log.Printf("Seeded %d menu items", n)
		}
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	pubs := events.Multi{hub}
	if cfg.AMQPURL != "" {
		publisher, err := mq.Dial(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
		pubs = append(pubs, publisher)
		log.Printf("Publishing order events to exchange %q", mq.Exchange)
	}

	sessions := auth.NewSessionStore(cfg.SessionTTL)
	go pruneSessions(ctx, sessions, time.Hour)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router.New(cfg, store, sessions, hub, pubs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("ERROR: server shutdown: %v", err)
		}
	}()

	log.Printf("Starting server on :%s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}

// openStore returns the PostgreSQL store when DATABASE_URL is set, running
// migrations first, and the in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (database.Store, func(), error) {
	if !cfg.UsesPostgres() {
		log.Println("DATABASE_URL not set, using in-memory store")
		return database.NewMemory(), func() {}, nil
	}

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		return nil, nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("unable to ping database: %w", err)
	}
	log.Println("Connected to database")
	return database.NewPostgres(pool), pool.Close, nil
}

func pruneSessions(ctx context.Context, sessions *auth.SessionStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Prune(); n > 0 {
				log.Printf("Pruned %d expired sessions", n)
			}
		}
	}
}
