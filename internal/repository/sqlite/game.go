package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/vgb/internal/apperror"
	"github.com/sakif/vgb/internal/model"
	"github.com/sakif/vgb/internal/repository"
)

var _ repository.GameRepository = (*GameDB)(nil)

// GameDB is the games collection.
type GameDB struct {
	conn *sql.DB
}

const gameColumns = `id, title, release_date, platforms, genre, description, specifications, created_at, updated_at`

// Create inserts a game. ID is generated here; timestamps default to now if
// the caller left them unset.
func (g *GameDB) Create(ctx context.Context, game *model.Game) error {
	game.ID = xid.New().String()
	now := time.Now().UTC()
	if game.CreatedAt.IsZero() {
		game.CreatedAt = now
	}
	if game.UpdatedAt.IsZero() {
		game.UpdatedAt = game.CreatedAt
	}

	platforms, specs, err := encodeGameDocs(game)
	if err != nil {
		return err
	}

	_, err = g.conn.ExecContext(ctx,
		`INSERT INTO games (`+gameColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		game.ID,
		game.Title,
		game.ReleaseDate,
		platforms,
		game.Genre,
		game.Description,
		specs,
		game.CreatedAt,
		game.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating game: %w", err)
	}
	return nil
}

// GetByID retrieves a single game.
// Returns apperror.ErrNotFound if the game doesn't exist.
func (g *GameDB) GetByID(ctx context.Context, id string) (*model.Game, error) {
	game, err := scanGame(g.conn.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("game", id)
		}
		return nil, fmt.Errorf("sqlite: getting game %s: %w", id, err)
	}
	return game, nil
}

// List returns one page of games matching filter.
//
// The WHERE clause is assembled from whichever filters are set:
//   - genre    → plain equality
//   - platform → EXISTS over json_each(platforms), exact element match
//   - search   → instr(lower(..)) over title and description
//
// All of them run inside the query, before LIMIT/OFFSET.
func (g *GameDB) List(ctx context.Context, filter repository.GameFilter) ([]model.Game, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = repository.DefaultGameLimit
	}
	if limit > repository.MaxGameLimit {
		limit = repository.MaxGameLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		where []string
		args  []any
	)
	if filter.Genre != "" {
		where = append(where, `genre = ?`)
		args = append(args, filter.Genre)
	}
	if filter.Platform != "" {
		where = append(where, `EXISTS (SELECT 1 FROM json_each(games.platforms) WHERE json_each.value = ?)`)
		args = append(args, filter.Platform)
	}
	if filter.Search != "" {
		where = append(where, `(instr(`+foldFunc+`(title), `+foldFunc+`(?)) > 0 OR instr(`+foldFunc+`(description), `+foldFunc+`(?)) > 0)`)
		args = append(args, filter.Search, filter.Search)
	}

	query := `SELECT ` + gameColumns + ` FROM games`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY release_date DESC, id ASC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := g.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing games: %w", err)
	}
	defer rows.Close()

	games := make([]model.Game, 0, limit)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning game row: %w", err)
		}
		games = append(games, *game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating games: %w", err)
	}

	return games, nil
}

// Update overwrites every mutable field of the game. The service merges
// partial updates before calling this.
func (g *GameDB) Update(ctx context.Context, game *model.Game) error {
	if game.UpdatedAt.IsZero() {
		game.UpdatedAt = time.Now().UTC()
	}

	platforms, specs, err := encodeGameDocs(game)
	if err != nil {
		return err
	}

	result, err := g.conn.ExecContext(ctx,
		`UPDATE games
		 SET title = ?, release_date = ?, platforms = ?, genre = ?,
		     description = ?, specifications = ?, updated_at = ?
		 WHERE id = ?`,
		game.Title,
		game.ReleaseDate,
		platforms,
		game.Genre,
		game.Description,
		specs,
		game.UpdatedAt,
		game.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating game %s: %w", game.ID, err)
	}
	return rowsAffectedOrNotFound(result, apperror.NotFound("game", game.ID))
}

// Delete removes a game. Comments and favorites that reference it are left
// in place.
func (g *GameDB) Delete(ctx context.Context, id string) error {
	result, err := g.conn.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting game %s: %w", id, err)
	}
	return rowsAffectedOrNotFound(result, apperror.NotFound("game", id))
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*model.Game, error) {
	var (
		game      model.Game
		platforms string
		specs     string
	)
	if err := row.Scan(
		&game.ID,
		&game.Title,
		&game.ReleaseDate,
		&platforms,
		&game.Genre,
		&game.Description,
		&specs,
		&game.CreatedAt,
		&game.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(platforms), &game.Platforms); err != nil {
		return nil, fmt.Errorf("decoding platforms of game %s: %w", game.ID, err)
	}
	if err := json.Unmarshal([]byte(specs), &game.Specifications); err != nil {
		return nil, fmt.Errorf("decoding specifications of game %s: %w", game.ID, err)
	}
	if game.Specifications == nil {
		game.Specifications = map[string]any{}
	}

	return &game, nil
}

func encodeGameDocs(game *model.Game) (platforms, specs string, err error) {
	p := game.Platforms
	if p == nil {
		p = model.Platforms{}
	}
	pb, err := json.Marshal([]string(p))
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding platforms: %w", err)
	}

	s := game.Specifications
	if s == nil {
		s = map[string]any{}
	}
	sb, err := json.Marshal(s)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding specifications: %w", err)
	}

	return string(pb), string(sb), nil
}
