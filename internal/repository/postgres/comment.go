package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/xid"

	"github.com/sakif/vgb/internal/apperror"
	"github.com/sakif/vgb/internal/model"
	"github.com/sakif/vgb/internal/repository"
)

var _ repository.CommentRepository = (*CommentRepo)(nil)

// CommentRepo is the comments collection.
type CommentRepo struct {
	pool *pgxpool.Pool
}

func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	c.ID = xid.New().String()
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO comments (id, game_id, user_id, content, timestamp) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.GameID, c.UserID, c.Content, c.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: creating comment: %w", err)
	}
	return nil
}

func (r *CommentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := r.pool.QueryRow(ctx,
		`SELECT id, game_id, user_id, content, timestamp FROM comments WHERE id = $1`, id,
	).Scan(&c.ID, &c.GameID, &c.UserID, &c.Content, &c.Timestamp)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("postgres: getting comment %s: %w", id, err)
	}
	return &c, nil
}

func (r *CommentRepo) ListByGame(ctx context.Context, gameID string) ([]model.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, game_id, user_id, content, timestamp FROM comments WHERE game_id = $1`, gameID)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing comments for game %s: %w", gameID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.GameID, &c.UserID, &c.Content, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("postgres: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating comments: %w", err)
	}
	return comments, nil
}

func (r *CommentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting comment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}
