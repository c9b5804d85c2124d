package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/xid"

	"github.com/sakif/vgb/internal/apperror"
	"github.com/sakif/vgb/internal/model"
	"github.com/sakif/vgb/internal/repository"
)

var _ repository.FavoriteRepository = (*FavoriteRepo)(nil)

// FavoriteRepo is the favorites collection.
type FavoriteRepo struct {
	pool *pgxpool.Pool
}

const favoriteColumns = `id, user_id, game_id, created_at`

func (r *FavoriteRepo) Create(ctx context.Context, f *model.Favorite) error {
	f.ID = xid.New().String()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO favorites (`+favoriteColumns+`) VALUES ($1, $2, $3, $4)`,
		f.ID, f.UserID, f.GameID, f.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("game_id", "Game already in favorites")
		}
		return fmt.Errorf("postgres: creating favorite: %w", err)
	}
	return nil
}

func (r *FavoriteRepo) GetByID(ctx context.Context, id string) (*model.Favorite, error) {
	f, err := scanFavorite(r.pool.QueryRow(ctx,
		`SELECT `+favoriteColumns+` FROM favorites WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("favorite", id)
		}
		return nil, fmt.Errorf("postgres: getting favorite %s: %w", id, err)
	}
	return f, nil
}

func (r *FavoriteRepo) FindByUserAndGame(ctx context.Context, userID, gameID string) (*model.Favorite, error) {
	f, err := scanFavorite(r.pool.QueryRow(ctx,
		`SELECT `+favoriteColumns+` FROM favorites WHERE user_id = $1 AND game_id = $2 LIMIT 1`,
		userID, gameID))
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("favorite", userID+"/"+gameID)
		}
		return nil, fmt.Errorf("postgres: finding favorite: %w", err)
	}
	return f, nil
}

func (r *FavoriteRepo) ListByUser(ctx context.Context, userID string) ([]model.Favorite, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+favoriteColumns+` FROM favorites WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing favorites for user %s: %w", userID, err)
	}
	defer rows.Close()

	favorites := []model.Favorite{}
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning favorite row: %w", err)
		}
		favorites = append(favorites, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating favorites: %w", err)
	}
	return favorites, nil
}

func (r *FavoriteRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting favorite %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("favorite", id)
	}
	return nil
}

func scanFavorite(row pgx.Row) (*model.Favorite, error) {
	var f model.Favorite
	if err := row.Scan(&f.ID, &f.UserID, &f.GameID, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}
