// Package postgres implements the repository interfaces on PostgreSQL through
// a pgx connection pool. It is the server-side alternative to the embedded
// sqlite store and is selected with database.driver = "postgres".
//
// Games keep platforms in a TEXT[] column and specifications in JSONB, so the
// platform filter is a plain "= ANY(platforms)".
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakif/vgb/internal/config"
	"github.com/sakif/vgb/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a pgx connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects to PostgreSQL, verifies the connection and runs migrations.
func New(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing dsn: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	poolConfig.ConnConfig.ConnectTimeout = 10 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	db := &DB{pool: pool, logger: logger}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		slog.String("database", poolConfig.ConnConfig.Database),
		slog.Int("max_conns", int(poolConfig.MaxConns)),
	)

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	db.pool.Close()
	return nil
}

// Ping checks the database connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

func (db *DB) Users() repository.UserRepository         { return &UserRepo{pool: db.pool} }
func (db *DB) Games() repository.GameRepository         { return &GameRepo{pool: db.pool} }
func (db *DB) Comments() repository.CommentRepository   { return &CommentRepo{pool: db.pool} }
func (db *DB) Favorites() repository.FavoriteRepository { return &FavoriteRepo{pool: db.pool} }

// migrate mirrors the sqlite schema: no foreign keys, UNIQUE on email and on
// the favorite pair.
func (db *DB) migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS games (
			id             TEXT PRIMARY KEY,
			title          TEXT NOT NULL,
			release_date   TEXT NOT NULL,
			platforms      TEXT[] NOT NULL DEFAULT '{}',
			genre          TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			specifications JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_games_release_date ON games (release_date DESC, id);
		CREATE INDEX IF NOT EXISTS idx_games_genre ON games (genre);

		CREATE TABLE IF NOT EXISTS comments (
			id        TEXT PRIMARY KEY,
			game_id   TEXT NOT NULL,
			user_id   TEXT NOT NULL,
			content   TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_comments_game_id ON comments (game_id);

		CREATE TABLE IF NOT EXISTS favorites (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			game_id    TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, game_id)
		);
		CREATE INDEX IF NOT EXISTS idx_favorites_user_id ON favorites (user_id);
	`)
	return err
}

// isUniqueViolation reports whether err is SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
