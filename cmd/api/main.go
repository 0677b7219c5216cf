// cmd/api/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MereWhiplash/neurocat/internal/api"
	"github.com/MereWhiplash/neurocat/internal/config"
	"github.com/MereWhiplash/neurocat/internal/palette"
	"github.com/MereWhiplash/neurocat/internal/service"
	"github.com/MereWhiplash/neurocat/internal/storage"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: %v", err)
	}

	configPath := flag.String("config", "", "Config file (default ./neurocat.yaml, then ~/.config/neurocat/config.yaml)")

	// Server flags
	addr := flag.String("addr", "", "Server address (overrides config)")

	// Storage flags
	storageDriver := flag.String("storage-driver", "", "Storage driver: sqlite, postgres, mongodb (overrides config)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	mongoURI := flag.String("mongodb-uri", "", "MongoDB connection URI")

	// Rate limiting flags
	rateLimit := flag.Int("rate-limit", 100, "Requests per minute per IP (0 to disable)")

	// CORS flags
	corsOrigins := flag.String("cors-origins", "", "Comma-separated list of allowed CORS origins (empty to disable)")

	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.API.Addr = *addr
	}
	if *storageDriver != "" {
		cfg.Storage.Driver = *storageDriver
	}
	if *postgresDSN != "" {
		cfg.Storage.PostgresDSN = *postgresDSN
	}
	if *mongoURI != "" {
		cfg.Storage.MongoDBURI = *mongoURI
	}

	ctx := context.Background()

	p, err := palette.Load(cfg.Palette.Path, cfg.Subtract())
	if err != nil {
		log.Fatalf("Failed to load palette: %v", err)
	}

	copts, err := cfg.ColorizerOptions()
	if err != nil {
		log.Fatalf("Failed to configure colorizer: %v", err)
	}

	// Initialize storage
	store, err := storage.New(ctx, cfg.StorageConfig())
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// Words are imported with the CLI; the API only reads.
	svc := service.New(store, p, nil, service.Options{
		Colorizer: copts,
		Spectrum:  cfg.SpectrumOptions(),
	})

	handlers := api.NewHandlers(svc)

	// Set health check to verify storage connectivity
	handlers.SetHealthCheck(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := store.Stats(ctx)
		return err
	})

	// Setup router
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(api.RequestID)
	r.Use(api.MaxBodySize)

	// Rate limiting (if enabled)
	if *rateLimit > 0 {
		limiter := api.NewRateLimiter(*rateLimit, time.Minute)
		r.Use(limiter.Middleware)
	}

	// CORS (if enabled)
	if *corsOrigins != "" {
		origins := strings.Split(*corsOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		r.Use(api.CORSMiddleware(origins))
	}

	// Routes
	r.Get("/health", handlers.Health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/colorize", handlers.Colorize)
		r.Get("/words/{word}", handlers.Scores)
		r.Get("/words/{word}/spectrum", handlers.Spectrum)
		r.Get("/stats", handlers.Stats)
	})

	// Create server
	srv := &http.Server{
		Addr:         cfg.API.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}

		close(done)
	}()

	// Start server
	log.Printf("Starting API server on %s (%d colors, %s storage)", cfg.API.Addr, p.Len(), cfg.Storage.Driver)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	<-done
	fmt.Println("Server stopped")
}
