package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sakif/vgb/internal/apperror"
	"github.com/sakif/vgb/internal/auth"
	"github.com/sakif/vgb/internal/model"
	"github.com/sakif/vgb/internal/repository"
)

// UnknownUsername is shown for comments whose author no longer exists.
const UnknownUsername = "Unknown User"

type commentInput struct {
	Content string `json:"content" validate:"required"`
}

// CommentService handles comments on games.
type CommentService struct {
	comments repository.CommentRepository
	games    repository.GameRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	games repository.GameRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		games:    games,
		users:    users,
		logger:   logger,
	}
}

// ListForGame returns the comments on a game, newest first, each carrying its
// author's current username. An unknown game simply has no comments.
func (s *CommentService) ListForGame(ctx context.Context, gameID string) ([]model.Comment, error) {
	comments, err := s.comments.ListByGame(ctx, strings.TrimSpace(gameID))
	if err != nil {
		s.logger.Error("failed to list comments",
			slog.String("gameID", gameID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	names := make(map[string]string)
	for i := range comments {
		name, ok := names[comments[i].UserID]
		if !ok {
			name, err = s.username(ctx, comments[i].UserID)
			if err != nil {
				return nil, err
			}
			names[comments[i].UserID] = name
		}
		comments[i].Username = name
	}

	sort.SliceStable(comments, func(i, j int) bool {
		if !comments[i].Timestamp.Equal(comments[j].Timestamp) {
			return comments[i].Timestamp.After(comments[j].Timestamp)
		}
		return comments[i].ID < comments[j].ID
	})

	return comments, nil
}

func (s *CommentService) username(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return UnknownUsername, nil
		}
		return "", fmt.Errorf("resolving comment author %s: %w", userID, err)
	}
	return user.Username, nil
}

// Create posts a comment on an existing game. Content is stored trimmed.
func (s *CommentService) Create(ctx context.Context, id *auth.Identity, gameID, content string) (*model.Comment, error) {
	if id == nil {
		return nil, apperror.Unauthorized("No token provided")
	}

	in := commentInput{Content: strings.TrimSpace(content)}
	if err := validateInput(in, nil, "Comment content is required"); err != nil {
		return nil, err
	}
	content = in.Content

	game, err := s.games.GetByID(ctx, strings.TrimSpace(gameID))
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		GameID:    game.ID,
		UserID:    id.UserID,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("gameID", game.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	comment.Username = id.Username

	s.logger.Info("comment posted",
		slog.String("id", comment.ID),
		slog.String("gameID", game.ID),
		slog.String("userID", id.UserID),
	)
	return comment, nil
}

// Delete removes a comment. The author and admins may delete it.
func (s *CommentService) Delete(ctx context.Context, id *auth.Identity, commentID string) error {
	comment, err := s.comments.GetByID(ctx, strings.TrimSpace(commentID))
	if err != nil {
		return err
	}

	if !auth.CanAccessOwned(id, comment.UserID) {
		return apperror.Forbidden("You can only delete your own comments")
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("deleting comment: %w", err)
	}

	s.logger.Info("comment deleted", slog.String("id", comment.ID), slog.String("by", id.UserID))
	return nil
}
