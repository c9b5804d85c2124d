package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/xid"

	"github.com/sakif/vgb/internal/apperror"
	"github.com/sakif/vgb/internal/model"
	"github.com/sakif/vgb/internal/repository"
)

var _ repository.GameRepository = (*GameRepo)(nil)

// GameRepo is the games collection.
type GameRepo struct {
	pool *pgxpool.Pool
}

const gameColumns = `id, title, release_date, platforms, genre, description, specifications, created_at, updated_at`

func (r *GameRepo) Create(ctx context.Context, game *model.Game) error {
	game.ID = xid.New().String()
	if game.CreatedAt.IsZero() {
		game.CreatedAt = time.Now().UTC()
	}
	if game.UpdatedAt.IsZero() {
		game.UpdatedAt = game.CreatedAt
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO games (`+gameColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		game.ID,
		game.Title,
		game.ReleaseDate,
		platformsArg(game.Platforms),
		game.Genre,
		game.Description,
		specsArg(game.Specifications),
		game.CreatedAt,
		game.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: creating game: %w", err)
	}
	return nil
}

func (r *GameRepo) GetByID(ctx context.Context, id string) (*model.Game, error) {
	game, err := scanGame(r.pool.QueryRow(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("game", id)
		}
		return nil, fmt.Errorf("postgres: getting game %s: %w", id, err)
	}
	return game, nil
}

// List applies every filter in SQL, before LIMIT/OFFSET.
func (r *GameRepo) List(ctx context.Context, filter repository.GameFilter) ([]model.Game, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = repository.DefaultGameLimit
	}
	if limit > repository.MaxGameLimit {
		limit = repository.MaxGameLimit
	}
	offset := max(filter.Offset, 0)

	var (
		where []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Genre != "" {
		where = append(where, "genre = "+next(filter.Genre))
	}
	if filter.Platform != "" {
		where = append(where, next(filter.Platform)+" = ANY(platforms)")
	}
	if filter.Search != "" {
		p := next(filter.Search)
		where = append(where, "(strpos(lower(title), lower("+p+")) > 0 OR strpos(lower(description), lower("+p+")) > 0)")
	}

	query := `SELECT ` + gameColumns + ` FROM games`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY release_date DESC, id ASC LIMIT ` + next(limit) + ` OFFSET ` + next(offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing games: %w", err)
	}
	defer rows.Close()

	games := make([]model.Game, 0, limit)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning game row: %w", err)
		}
		games = append(games, *game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating games: %w", err)
	}
	return games, nil
}

func (r *GameRepo) Update(ctx context.Context, game *model.Game) error {
	if game.UpdatedAt.IsZero() {
		game.UpdatedAt = time.Now().UTC()
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE games
		 SET title = $1, release_date = $2, platforms = $3, genre = $4,
		     description = $5, specifications = $6, updated_at = $7
		 WHERE id = $8`,
		game.Title,
		game.ReleaseDate,
		platformsArg(game.Platforms),
		game.Genre,
		game.Description,
		specsArg(game.Specifications),
		game.UpdatedAt,
		game.ID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating game %s: %w", game.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("game", game.ID)
	}
	return nil
}

func (r *GameRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting game %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("game", id)
	}
	return nil
}

func scanGame(row pgx.Row) (*model.Game, error) {
	var (
		g         model.Game
		platforms []string
	)
	if err := row.Scan(
		&g.ID,
		&g.Title,
		&g.ReleaseDate,
		&platforms,
		&g.Genre,
		&g.Description,
		&g.Specifications,
		&g.CreatedAt,
		&g.UpdatedAt,
	); err != nil {
		return nil, err
	}
	g.Platforms = model.Platforms(platforms)
	if g.Specifications == nil {
		g.Specifications = map[string]any{}
	}
	return &g, nil
}

func platformsArg(p model.Platforms) []string {
	if p == nil {
		return []string{}
	}
	return []string(p)
}

func specsArg(s map[string]any) map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return s
}
