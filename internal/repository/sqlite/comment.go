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

var _ repository.CommentRepository = (*CommentDB)(nil)

// CommentDB is the comments collection.
type CommentDB struct {
	conn *sql.DB
}

func (c *CommentDB) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	if comment.Timestamp.IsZero() {
		comment.Timestamp = time.Now().UTC()
	}

	_, err := c.conn.ExecContext(ctx,
		`INSERT INTO comments (id, game_id, user_id, content, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.GameID,
		comment.UserID,
		comment.Content,
		comment.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}
	return nil
}

func (c *CommentDB) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	err := c.conn.QueryRowContext(ctx,
		`SELECT id, game_id, user_id, content, timestamp FROM comments WHERE id = ?`, id,
	).Scan(&comment.ID, &comment.GameID, &comment.UserID, &comment.Content, &comment.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	return &comment, nil
}

// ListByGame returns every comment on a game in storage order. Ordering by
// timestamp is the service's job.
func (c *CommentDB) ListByGame(ctx context.Context, gameID string) ([]model.Comment, error) {
	rows, err := c.conn.QueryContext(ctx,
		`SELECT id, game_id, user_id, content, timestamp FROM comments WHERE game_id = ?`, gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for game %s: %w", gameID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var cm model.Comment
		if err := rows.Scan(&cm.ID, &cm.GameID, &cm.UserID, &cm.Content, &cm.Timestamp); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, cm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

func (c *CommentDB) Delete(ctx context.Context, id string) error {
	result, err := c.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}
	return rowsAffectedOrNotFound(result, apperror.NotFound("comment", id))
}
