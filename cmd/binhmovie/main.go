package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chandubinh-create/binhmovie/internal/adapter/driven"
	"github.com/chandubinh-create/binhmovie/internal/adapter/driver"
	"github.com/chandubinh-create/binhmovie/internal/application"
	"github.com/chandubinh-create/binhmovie/internal/cache"
	"github.com/chandubinh-create/binhmovie/internal/catalog"
	"github.com/chandubinh-create/binhmovie/internal/circuitbreaker"
	"github.com/chandubinh-create/binhmovie/internal/config"
	"github.com/chandubinh-create/binhmovie/internal/fetcher"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.etcd.io/bbolt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Create structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("starting binhmovie",
		"addr", cfg.Addr(),
		"upstream", cfg.Upstream.BaseURL,
		"cache_ttl", cfg.Cache.TTL,
		"cache_max_entries", cfg.Cache.MaxEntries,
		"db_path", cfg.DB.Path,
		"log_level", cfg.Log.Level,
	)

	// Open BoltDB
	db, err := bbolt.Open(cfg.DB.Path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("error closing database: %v", err)
		}
	}()

	// Create driven adapters (repositories and the upstream catalog)
	historyRepo, err := driven.NewHistoryBoltDBRepository(db)
	if err != nil {
		log.Fatalf("failed to create history repository: %v", err)
	}

	bookmarkRepo, err := driven.NewBookmarkBoltDBRepository(db)
	if err != nil {
		log.Fatalf("failed to create bookmark repository: %v", err)
	}

	commentRepo, err := driven.NewCommentBoltDBRepository(db)
	if err != nil {
		log.Fatalf("failed to create comment repository: %v", err)
	}

	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:             "catalog",
		FailureThreshold: cfg.Breaker.FailureThreshold,
		Timeout:          cfg.Breaker.Timeout,
		HalfOpenRequests: cfg.Breaker.HalfOpenRequests,
		Logger:           logger,
	})

	storage := cache.New(cfg.Cache.MaxEntries)
	catalogFetcher := fetcher.New(storage, fetcher.Config{
		TTL:     cfg.Cache.TTL,
		Timeout: cfg.Upstream.Timeout,
		Breaker: breaker,
		Logger:  logger,
	})
	catalogSource := driven.NewCatalogHTTPSource(cfg.Upstream.BaseURL, catalogFetcher)

	// Create application services
	libraryService := application.NewLibraryService(historyRepo, bookmarkRepo, commentRepo)
	catalogService := application.NewCatalogService(catalogSource, libraryService, logger)
	healthService := application.NewHealthService(historyRepo, catalogFetcher, breaker)

	// Create HTTP handlers
	images := catalog.NewImageRewriter(cfg.Image.ProxyURL, cfg.Image.OriginURL)

	doc, err := driver.LoadOpenAPI()
	if err != nil {
		log.Fatalf("failed to load API description: %v", err)
	}

	apiHandler := driver.NewAPIRouter(driver.APIHandlers{
		Catalog:  driver.NewCatalogHTTPHandler(catalogService, images),
		Library:  driver.NewLibraryHTTPHandler(libraryService, images),
		Comments: driver.NewCommentHTTPHandler(libraryService),
		Health:   driver.NewHealthHTTPHandler(healthService),
	}, doc)

	// Root router: API under /api/, Prometheus metrics at /metrics
	rootMux := http.NewServeMux()
	rootMux.Handle("/api/", http.StripPrefix("/api", driver.LogRequests(logger, apiHandler)))
	rootMux.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      rootMux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
