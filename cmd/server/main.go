// Package main is the entry point for the traffic complaint backend server.
// It provides a REST API for complaint intake, retrieval, and search, plus
// the conversational boundary used by the chat frontend.
//
// Architecture:
//   - Complaints live in PostgreSQL behind a paginated query contract
//   - Search normalizes noisy filter input (fuzzy matching, relative time
//     phrases in Arizona time) before fanning out per status
//   - Chat session filters are kept in Redis so a follow-up email intent
//     can reuse the last query
//   - Beat geocoding and email delivery are external services reached over
//     thin HTTP clients
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beatwatch/complaint-server/internal/config"
	"github.com/beatwatch/complaint-server/internal/database"
	"github.com/beatwatch/complaint-server/internal/handlers"
	"github.com/beatwatch/complaint-server/internal/middleware"
	"github.com/beatwatch/complaint-server/internal/recordstore"
	"github.com/beatwatch/complaint-server/internal/services"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("Failed to load config: %v", err)
	}

	sugar.Infow("Starting complaint server",
		"port", cfg.Port,
		"env", cfg.Environment,
		"table", cfg.ComplaintsTable,
	)

	// Initialize database connection pool
	db, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(context.Background(), db, cfg.ComplaintsTable); err != nil {
		sugar.Fatalf("Failed to ensure schema: %v", err)
	}

	// Redis backs the chat session filter store
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Fatalf("Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Initialize services
	store := services.NewComplaintStore(db, cfg.ComplaintsTable, sugar)

	// The orchestrator queries the local store unless a remote record store
	// is configured.
	var querier services.Querier = store
	if cfg.RecordStoreURL != "" {
		querier = recordstore.NewClient(cfg.RecordStoreURL,
			time.Duration(cfg.RecordStoreTimeoutSec)*time.Second)
		sugar.Infow("Using remote record store", "url", cfg.RecordStoreURL)
	}

	searchSvc := services.NewSearchService(querier, cfg.ComplaintsTable, sugar)
	emailSvc := services.NewEmailService(cfg.EmailRelayURL, cfg.AllowedEmailDomains, sugar)
	beatSvc := services.NewBeatResolver(cfg.GeocoderURL, cfg.GeocoderCity, sugar)
	sessionSvc := services.NewSessionStore(redisClient,
		time.Duration(cfg.SessionTTLMin)*time.Minute, sugar)

	// Initialize handlers
	complaintHandler := handlers.NewComplaintHandler(store, beatSvc, sugar)
	searchHandler := handlers.NewSearchHandler(searchSvc, emailSvc, sugar)
	intentHandler := handlers.NewIntentHandler(searchSvc, emailSvc, sessionSvc, sugar)
	healthHandler := handlers.NewHealthHandler(db, sugar)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limiting
	r.Use(middleware.RateLimit(cfg.RateLimitRPM))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", healthHandler.Check)
		r.Get("/health/ready", healthHandler.Ready)

		// Complaint endpoints
		r.Route("/complaints", func(r chi.Router) {
			r.Post("/", complaintHandler.Submit)          // Submit a complaint
			r.Post("/query", complaintHandler.Query)      // Record-store query contract
			r.Get("/{complaintId}", complaintHandler.Get) // Lookup by ID
			r.With(middleware.RequireAuth(cfg.JWTSecret)).
				Put("/{complaintId}", complaintHandler.Update) // Portal edits (auth)
		})

		// Search endpoints
		r.Post("/search", searchHandler.Search)      // Filtered complaint search
		r.Post("/search/email", searchHandler.Email) // Email search results

		// Conversational boundary (chat frontend)
		r.Post("/intent", intentHandler.Handle)

		// Portal heatmap
		r.Get("/heatmap", complaintHandler.Heatmap)
	})

	// Serve static files (frontend build)
	r.Handle("/*", http.FileServer(http.Dir("../dist")))

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}

	sugar.Info("Server stopped")
}
