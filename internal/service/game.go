// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces the guard, orchestrates
//	Repository (Data layer)  → reads/writes the document store
//
// Services take repository interfaces, never a concrete store, so the same
// code runs against sqlite, postgres, or the in-memory fakes in the tests.
//
// AUTHORIZATION:
// Every mutating method receives the caller's *auth.Identity and checks it
// with the auth guard before touching the store. A failed check is always a
// Forbidden error; results are never silently filtered.
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

const msgMissingGameFields = "Missing required fields: title, release_date, platforms, genre"

// GameService handles the game catalog.
type GameService struct {
	repo   repository.GameRepository
	logger *slog.Logger
}

// NewGameService creates a new GameService.
func NewGameService(repo repository.GameRepository, logger *slog.Logger) *GameService {
	return &GameService{
		repo:   repo,
		logger: logger,
	}
}

// GameInput holds the fields of a new game. Platforms decodes from either a
// single string or an array.
type GameInput struct {
	Title          string          `json:"title"          validate:"required"`
	ReleaseDate    string          `json:"release_date"   validate:"required,datetime=2006-01-02"`
	Platforms      model.Platforms `json:"platforms"      validate:"min=1"`
	Genre          string          `json:"genre"          validate:"required"`
	Description    string          `json:"description"`
	Specifications map[string]any  `json:"specifications"`
}

var (
	createGameMessages = map[string]string{
		"release_date.datetime": msgBadReleaseDate,
	}
	updateGameMessages = map[string]string{
		"title.required":        "title must not be empty",
		"release_date.required": "release_date must not be empty",
		"release_date.datetime": msgBadReleaseDate,
		"platforms.min":         "platforms must not be empty",
		"genre.required":        "genre must not be empty",
	}
)

const msgBadReleaseDate = "release_date must be a date in YYYY-MM-DD format"

func gameInputOf(g *model.Game) GameInput {
	return GameInput{
		Title:          g.Title,
		ReleaseDate:    g.ReleaseDate,
		Platforms:      g.Platforms,
		Genre:          g.Genre,
		Description:    g.Description,
		Specifications: g.Specifications,
	}
}

// List returns games newest release first. Filters are applied before the
// limit/offset window; limit defaults to 50 and is capped at 200.
func (s *GameService) List(ctx context.Context, filter repository.GameFilter) ([]model.Game, error) {
	if filter.Limit <= 0 {
		filter.Limit = repository.DefaultGameLimit
	}
	if filter.Limit > repository.MaxGameLimit {
		filter.Limit = repository.MaxGameLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Genre = strings.TrimSpace(filter.Genre)
	filter.Platform = strings.TrimSpace(filter.Platform)
	filter.Search = strings.TrimSpace(filter.Search)

	games, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list games", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return games, nil
}

// Get returns one game. Returns apperror.ErrNotFound if it doesn't exist.
func (s *GameService) Get(ctx context.Context, id string) (*model.Game, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.NotFound("game", id)
	}
	return s.repo.GetByID(ctx, id)
}

// Create adds a game to the catalog. Admin only.
func (s *GameService) Create(ctx context.Context, id *auth.Identity, in GameInput) (*model.Game, error) {
	if err := auth.RequireAdmin(id); err != nil {
		return nil, err
	}

	game := &model.Game{
		Title:          strings.TrimSpace(in.Title),
		ReleaseDate:    strings.TrimSpace(in.ReleaseDate),
		Platforms:      cleanPlatforms(in.Platforms),
		Genre:          strings.TrimSpace(in.Genre),
		Description:    strings.TrimSpace(in.Description),
		Specifications: in.Specifications,
	}
	if err := validateInput(gameInputOf(game), createGameMessages, msgMissingGameFields); err != nil {
		return nil, err
	}
	if game.Specifications == nil {
		game.Specifications = map[string]any{}
	}

	now := time.Now().UTC()
	game.CreatedAt = now
	game.UpdatedAt = now

	if err := s.repo.Create(ctx, game); err != nil {
		s.logger.Error("failed to create game",
			slog.String("title", game.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating game: %w", err)
	}

	s.logger.Info("game created",
		slog.String("id", game.ID),
		slog.String("title", game.Title),
		slog.String("by", id.UserID),
	)
	return game, nil
}

// Update merges the provided fields into an existing game. Admin only.
//
// STRATEGY: fetch, merge, validate the merged result, save. Fields that were
// absent or null in the request are nil in upd and keep their stored value.
func (s *GameService) Update(ctx context.Context, id *auth.Identity, gameID string, upd model.GameUpdate) (*model.Game, error) {
	if err := auth.RequireAdmin(id); err != nil {
		return nil, err
	}

	game, err := s.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	upd.Apply(game)
	game.Title = strings.TrimSpace(game.Title)
	game.ReleaseDate = strings.TrimSpace(game.ReleaseDate)
	game.Genre = strings.TrimSpace(game.Genre)
	game.Description = strings.TrimSpace(game.Description)
	game.Platforms = cleanPlatforms(game.Platforms)

	if err := validateInput(gameInputOf(game), updateGameMessages, msgMissingGameFields); err != nil {
		return nil, err
	}
	if game.Specifications == nil {
		game.Specifications = map[string]any{}
	}
	game.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, game); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update game",
			slog.String("id", game.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating game: %w", err)
	}

	s.logger.Info("game updated", slog.String("id", game.ID), slog.String("by", id.UserID))
	return game, nil
}

// Delete removes a game. Admin only. Comments and favorites pointing at the
// game are left in place.
func (s *GameService) Delete(ctx context.Context, id *auth.Identity, gameID string) error {
	if err := auth.RequireAdmin(id); err != nil {
		return err
	}

	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return apperror.NotFound("game", gameID)
	}

	if err := s.repo.Delete(ctx, gameID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete game",
			slog.String("id", gameID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting game: %w", err)
	}

	s.logger.Info("game deleted", slog.String("id", gameID), slog.String("by", id.UserID))
	return nil
}

// cleanPlatforms trims entries and drops blank ones, keeping order.
func cleanPlatforms(in model.Platforms) model.Platforms {
	out := make(model.Platforms, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
