// Package store opens the configured repository backend.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/vgb/internal/config"
	"github.com/sakif/vgb/internal/repository"
	"github.com/sakif/vgb/internal/repository/postgres"
	"github.com/sakif/vgb/internal/repository/sqlite"
)

// Open returns the store selected by cfg.Driver. For sqlite the database
// file's directory is created if needed.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (repository.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		if cfg.Path != ":memory:" {
			// 0755 = owner can read/write/execute, others can read/execute.
			dir := filepath.Dir(cfg.Path)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: creating database directory %s: %w", dir, err)
			}
		}
		db, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("opened sqlite store", slog.String("path", cfg.Path))
		return db, nil

	case "postgres":
		db, err := postgres.New(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("opened postgres store")
		return db, nil

	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
