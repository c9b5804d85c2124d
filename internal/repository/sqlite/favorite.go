package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/vgb/internal/apperror"
	"github.com/sakif/vgb/internal/model"
	"github.com/sakif/vgb/internal/repository"
)

var _ repository.FavoriteRepository = (*FavoriteDB)(nil)

// FavoriteDB is the favorites collection.
type FavoriteDB struct {
	conn *sql.DB
}

const favoriteColumns = `id, user_id, game_id, created_at`

// Create inserts a favorite. If the (user, game) pair already exists the
// UNIQUE constraint rejects it and apperror.ErrConflict is returned.
func (f *FavoriteDB) Create(ctx context.Context, fav *model.Favorite) error {
	fav.ID = xid.New().String()
	if fav.CreatedAt.IsZero() {
		fav.CreatedAt = time.Now().UTC()
	}

	_, err := f.conn.ExecContext(ctx,
		`INSERT INTO favorites (`+favoriteColumns+`) VALUES (?, ?, ?, ?)`,
		fav.ID,
		fav.UserID,
		fav.GameID,
		fav.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("game_id", "Game already in favorites")
		}
		return fmt.Errorf("sqlite: creating favorite: %w", err)
	}
	return nil
}

func (f *FavoriteDB) GetByID(ctx context.Context, id string) (*model.Favorite, error) {
	fav, err := scanFavorite(f.conn.QueryRowContext(ctx,
		`SELECT `+favoriteColumns+` FROM favorites WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("favorite", id)
		}
		return nil, fmt.Errorf("sqlite: getting favorite %s: %w", id, err)
	}
	return fav, nil
}

func (f *FavoriteDB) FindByUserAndGame(ctx context.Context, userID, gameID string) (*model.Favorite, error) {
	fav, err := scanFavorite(f.conn.QueryRowContext(ctx,
		`SELECT `+favoriteColumns+` FROM favorites WHERE user_id = ? AND game_id = ? LIMIT 1`,
		userID, gameID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("favorite", userID+"/"+gameID)
		}
		return nil, fmt.Errorf("sqlite: finding favorite: %w", err)
	}
	return fav, nil
}

// ListByUser returns a user's favorites, oldest first.
func (f *FavoriteDB) ListByUser(ctx context.Context, userID string) ([]model.Favorite, error) {
	rows, err := f.conn.QueryContext(ctx,
		`SELECT `+favoriteColumns+` FROM favorites WHERE user_id = ? ORDER BY id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorites for user %s: %w", userID, err)
	}
	defer rows.Close()

	favorites := []model.Favorite{}
	for rows.Next() {
		fav, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning favorite row: %w", err)
		}
		favorites = append(favorites, *fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating favorites: %w", err)
	}
	return favorites, nil
}

func (f *FavoriteDB) Delete(ctx context.Context, id string) error {
	result, err := f.conn.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting favorite %s: %w", id, err)
	}
	return rowsAffectedOrNotFound(result, apperror.NotFound("favorite", id))
}

func scanFavorite(row rowScanner) (*model.Favorite, error) {
	var fav model.Favorite
	if err := row.Scan(&fav.ID, &fav.UserID, &fav.GameID, &fav.CreatedAt); err != nil {
		return nil, err
	}
	return &fav, nil
}
