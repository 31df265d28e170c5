package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/maelys-market/creanciers/internal/ledger"
	"github.com/maelys-market/creanciers/internal/middleware"
	"github.com/maelys-market/creanciers/internal/notify"
	"github.com/maelys-market/creanciers/internal/service"
	"github.com/maelys-market/creanciers/internal/storage/sqlite"
	"github.com/maelys-market/creanciers/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/creanciers.db")
	port := getEnv("PORT", "8080")
	countryPrefix := getEnv("COUNTRY_PREFIX", "221")

	// Initialize the SQLite-backed key-value store
	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	// Load the ledger; legacy records are migrated on the way in
	ldg, err := ledger.Open(context.Background(), store)
	if err != nil {
		slog.Error("Failed to load ledger", "error", err)
		os.Exit(1)
	}
	slog.Info("Ledger loaded", "records", len(ldg.Records()))

	composer := notify.NewComposer()
	composer.CountryPrefix = countryPrefix

	mux := http.NewServeMux()
	service.NewLedgerService(ldg, composer).Routes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Add logging, metrics and CORS middleware
	handler := middleware.Logging(middleware.Metrics(middleware.CORS(mux)))

	// Wrap with h2c so HTTP/2 works without TLS on the local network
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%s", port)
	slog.Info("Créanciers server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
