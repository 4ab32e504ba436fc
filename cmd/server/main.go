// Package main runs the unified analysis server:
// - HTTP API: light curve upload + analysis, discovery listing
// - WebSocket progress feed for in-flight analyses
// - Prometheus metrics
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"exoplanet-lab/internal/analysis"
	"exoplanet-lab/internal/catalog"
	"exoplanet-lab/internal/classify"
	"exoplanet-lab/internal/explain"
	"exoplanet-lab/internal/httpapi"
	"exoplanet-lab/internal/storage"
	chstore "exoplanet-lab/internal/storage/clickhouse"
	"exoplanet-lab/internal/storage/memory"
	"exoplanet-lab/internal/storage/migrations"
	pgstore "exoplanet-lab/internal/storage/postgres"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("SERVER_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional, enables raw curve archive)")
	classifierURL := flag.String("classifier-url", os.Getenv("CLASSIFIER_URL"), "Classification model service base URL (optional)")
	geminiKey := flag.String("gemini-api-key", os.Getenv("GEMINI_API_KEY"), "Gemini API key for explanations (optional)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, archive, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	var predictor classify.Predictor
	if *classifierURL != "" {
		client := classify.NewClient(*classifierURL)
		predictor = client

		healthCtx, healthCancel := context.WithTimeout(ctx, classify.DefaultTimeout)
		if err := client.Health(healthCtx); err != nil {
			logger.Printf("Classification service %s unreachable, verdicts will fall back per request: %v", *classifierURL, err)
		} else {
			logger.Printf("Classification service: %s", *classifierURL)
		}
		healthCancel()
	} else {
		logger.Println("No classification service configured, using rule-based fallback only")
	}
	classifier := classify.NewClassifier(predictor, log.New(os.Stdout, "[classify] ", log.LstdFlags|log.Lshortfile))

	explainer, err := explain.NewExplainer(ctx, *geminiKey, log.New(os.Stdout, "[explain] ", log.LstdFlags|log.Lshortfile))
	if err != nil {
		logger.Fatalf("Failed to create explainer: %v", err)
	}

	hub := httpapi.NewProgressHub(log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lshortfile))

	pipeline, err := analysis.NewPipeline(analysis.Options{
		Store:      store,
		Archive:    archive,
		Classifier: classifier,
		Catalog:    catalog.NewClient(),
		Explainer:  explainer,
		Progress:   hub.Publish,
		Logger:     log.New(os.Stdout, "[analysis] ", log.LstdFlags|log.Lshortfile),
	})
	if err != nil {
		logger.Fatalf("Failed to create pipeline: %v", err)
	}

	api := httpapi.New(httpapi.Options{
		Pipeline: pipeline,
		Store:    store,
		Hub:      hub,
		Logger:   log.New(os.Stdout, "[httpapi] ", log.LstdFlags|log.Lshortfile),
	})

	mux := http.NewServeMux()
	api.Register(mux)

	srv := &http.Server{
		Addr:    *addr,
		Handler: mux,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
		cancel()
	}()

	logger.Printf("Listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates the discovery store and optional light-curve archive.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (storage.DiscoveredObjectStore, storage.LightCurveArchive, func(), error) {
	if useMemory {
		return memory.NewDiscoveryStore(), memory.NewLightCurveArchive(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	store := pgstore.NewDiscoveryStore(pool)

	// The archive is optional: no ClickHouse DSN just disables it.
	if clickhouseDSN == "" {
		return store, nil, func() { pool.Close() }, nil
	}

	conn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		conn.Close()
		pool.Close()
		return nil, nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	cleanup := func() {
		conn.Close()
		pool.Close()
	}
	return store, chstore.NewLightCurveArchive(conn), cleanup, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
