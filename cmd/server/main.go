// Package main is the entry point for the VGB API server.
//
// MAIN PACKAGE IN GO:
// The main package should be kept minimal. Its job is to:
// 1. Read configuration (file + VGB_ environment variables, via viper)
// 2. Create dependencies (logger, store, metrics)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
//
// Usage:
//
//	VGB_AUTH_JWT_SECRET=$(openssl rand -hex 32) go run ./cmd/server
//	go run ./cmd/server --config configs/config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sakif/vgb/internal/config"
	"github.com/sakif/vgb/internal/metrics"
	"github.com/sakif/vgb/internal/server"
	"github.com/sakif/vgb/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: search ., ./configs, /etc/vgb)")
	flag.Parse()

	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// Text output for terminals, JSON for log shippers (logging.format).
	logger := cfg.Logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx := context.Background()

	// === 3. OPEN THE STORE ===
	// sqlite (embedded file) or postgres, per database.driver.
	st, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 4. METRICS ===
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// === 5. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, st, logger, m)
	if err != nil {
		st.Close()
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	// and closes the store on the way out.
	if err := srv.Start(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
