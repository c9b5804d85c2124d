// Command seed loads the sample accounts and game releases into the
// configured store. It reads the same configuration as the server.
//
//	VGB_AUTH_JWT_SECRET=... go run ./cmd/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sakif/vgb/internal/auth"
	"github.com/sakif/vgb/internal/config"
	"github.com/sakif/vgb/internal/seed"
	"github.com/sakif/vgb/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.Logging.NewLogger(os.Stdout)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	passwords, err := auth.NewPasswordServiceWithCost(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	sum, err := seed.New(st, passwords, logger).Run(ctx, seed.Users, seed.Games)
	if err != nil {
		return err
	}

	logger.Info("seeding complete",
		slog.Int("users_created", sum.UsersCreated),
		slog.Int("users_skipped", sum.UsersSkipped),
		slog.Int("games_created", sum.GamesCreated),
		slog.Int("games_skipped", sum.GamesSkipped),
	)
	logger.Info("admin account", slog.String("email", seed.Users[0].Email))
	return nil
}
