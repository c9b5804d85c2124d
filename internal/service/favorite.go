package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/vgb/internal/apperror"
	"github.com/sakif/vgb/internal/auth"
	"github.com/sakif/vgb/internal/model"
	"github.com/sakif/vgb/internal/repository"
)

type favoriteInput struct {
	GameID string `json:"game_id" validate:"required"`
}

// FavoriteService handles users' favorite lists.
//
// Adding and removing favorites is owner-only, with no admin override.
// Reading a list is owner-or-admin.
type FavoriteService struct {
	favorites repository.FavoriteRepository
	games     repository.GameRepository
	logger    *slog.Logger
}

func NewFavoriteService(
	favorites repository.FavoriteRepository,
	games repository.GameRepository,
	logger *slog.Logger,
) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		games:     games,
		logger:    logger,
	}
}

// ListForUser returns userID's favorites joined with their games. Favorites
// whose game has since been deleted are left out.
func (s *FavoriteService) ListForUser(ctx context.Context, id *auth.Identity, userID string) ([]model.FavoriteEntry, error) {
	if !auth.CanAccessOwned(id, userID) {
		return nil, apperror.Forbidden("You can only view your own favorites")
	}

	favorites, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list favorites",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing favorites: %w", err)
	}

	entries := make([]model.FavoriteEntry, 0, len(favorites))
	for _, f := range favorites {
		game, err := s.games.GetByID(ctx, f.GameID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolving favorite %s: %w", f.ID, err)
		}
		entries = append(entries, model.FavoriteEntry{
			ID:        f.ID,
			Game:      *game,
			CreatedAt: f.CreatedAt,
		})
	}
	return entries, nil
}

// Add puts gameID on userID's list. Only the user may add to their own list.
func (s *FavoriteService) Add(ctx context.Context, id *auth.Identity, userID, gameID string) (*model.Favorite, error) {
	if !auth.IsOwner(id, userID) {
		return nil, apperror.Forbidden("You can only add to your own favorites")
	}

	in := favoriteInput{GameID: strings.TrimSpace(gameID)}
	if err := validateInput(in, nil, "game_id is required"); err != nil {
		return nil, err
	}
	gameID = in.GameID

	if _, err := s.games.GetByID(ctx, gameID); err != nil {
		return nil, err
	}

	switch _, err := s.favorites.FindByUserAndGame(ctx, userID, gameID); {
	case err == nil:
		return nil, apperror.Conflict("game_id", "Game already in favorites")
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("checking favorite: %w", err)
	}

	favorite := &model.Favorite{
		UserID:    userID,
		GameID:    gameID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.favorites.Create(ctx, favorite); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to add favorite",
			slog.String("userID", userID),
			slog.String("gameID", gameID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding favorite: %w", err)
	}

	s.logger.Info("favorite added",
		slog.String("id", favorite.ID),
		slog.String("userID", userID),
		slog.String("gameID", gameID),
	)
	return favorite, nil
}

// Remove deletes a favorite. Only its owner may remove it.
func (s *FavoriteService) Remove(ctx context.Context, id *auth.Identity, favoriteID string) error {
	favorite, err := s.favorites.GetByID(ctx, strings.TrimSpace(favoriteID))
	if err != nil {
		return err
	}

	if !auth.IsOwner(id, favorite.UserID) {
		return apperror.Forbidden("You can only remove your own favorites")
	}

	if err := s.favorites.Delete(ctx, favorite.ID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("removing favorite: %w", err)
	}

	s.logger.Info("favorite removed", slog.String("id", favorite.ID))
	return nil
}
