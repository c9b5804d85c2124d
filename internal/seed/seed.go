// Package seed loads the sample accounts and releases into a store. Running
// it twice is safe: users are matched by email and games by exact title.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/vgb/internal/apperror"
	"github.com/sakif/vgb/internal/auth"
	"github.com/sakif/vgb/internal/model"
	"github.com/sakif/vgb/internal/repository"
)

// SampleUser is a seed account with its plaintext password.
type SampleUser struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

// Users are the sample accounts. The first one is the administrator.
var Users = []SampleUser{
	{Username: "VGBAdmin1", Email: "admin@vgb.com", Password: "admin123", IsAdmin: true},
	{Username: "GameEnthusiast", Email: "gamer@example.com", Password: "gamer123"},
	{Username: "ProGamer2025", Email: "pro@example.com", Password: "progamer123"},
}

// Games are the sample releases.
var Games = []model.Game{
	{
		Title:       "Grand Theft Auto VI",
		ReleaseDate: "2025-03-15",
		Platforms:   model.Platforms{"PlayStation 5", "Xbox Series X", "PC"},
		Genre:       "Action-Adventure",
		Description: "The next installment in the legendary GTA series",
		Specifications: map[string]any{
			"min_ram":  "16GB",
			"storage":  "150GB",
			"graphics": "RTX 3060 or equivalent",
		},
	},
	{
		Title:       "The Elder Scrolls VI",
		ReleaseDate: "2026-11-11",
		Platforms:   model.Platforms{"PlayStation 5", "Xbox Series X", "PC"},
		Genre:       "RPG",
		Description: "The highly anticipated next chapter in The Elder Scrolls saga",
		Specifications: map[string]any{
			"min_ram":  "16GB",
			"storage":  "120GB",
			"graphics": "RTX 4070 or equivalent",
		},
	},
	{
		Title:       "Hollow Knight: Silksong",
		ReleaseDate: "2025-06-12",
		Platforms:   model.Platforms{"Nintendo Switch", "PlayStation 5", "Xbox Series X", "PC"},
		Genre:       "Metroidvania",
		Description: "The sequel to the beloved Hollow Knight",
		Specifications: map[string]any{
			"min_ram":  "8GB",
			"storage":  "10GB",
			"graphics": "GTX 1050 or equivalent",
		},
	},
	{
		Title:       "Final Fantasy VII Rebirth",
		ReleaseDate: "2024-02-29",
		Platforms:   model.Platforms{"PlayStation 5"},
		Genre:       "RPG",
		Description: "The second part of the Final Fantasy VII Remake trilogy",
		Specifications: map[string]any{
			"min_ram":  "16GB",
			"storage":  "100GB",
			"graphics": "Exclusive to PS5",
		},
	},
	{
		Title:       "Metroid Prime 4",
		ReleaseDate: "2025-12-15",
		Platforms:   model.Platforms{"Nintendo Switch 2"},
		Genre:       "Action-Adventure",
		Description: "The long-awaited fourth installment in the Metroid Prime series",
		Specifications: map[string]any{
			"min_ram":  "N/A",
			"storage":  "32GB",
			"graphics": "Nintendo Switch 2 Exclusive",
		},
	},
}

// Summary counts what a run created and skipped.
type Summary struct {
	UsersCreated int
	UsersSkipped int
	GamesCreated int
	GamesSkipped int
}

// Seeder writes the sample data through the repository interfaces.
type Seeder struct {
	users     repository.UserRepository
	games     repository.GameRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func New(store repository.Store, passwords *auth.PasswordService, logger *slog.Logger) *Seeder {
	return &Seeder{
		users:     store.Users(),
		games:     store.Games(),
		passwords: passwords,
		logger:    logger,
	}
}

// Run seeds the given users and games.
func (s *Seeder) Run(ctx context.Context, users []SampleUser, games []model.Game) (Summary, error) {
	var sum Summary

	for _, u := range users {
		created, err := s.seedUser(ctx, u)
		if err != nil {
			return sum, err
		}
		if created {
			sum.UsersCreated++
		} else {
			sum.UsersSkipped++
		}
	}

	for _, g := range games {
		created, err := s.seedGame(ctx, g)
		if err != nil {
			return sum, err
		}
		if created {
			sum.GamesCreated++
		} else {
			sum.GamesSkipped++
		}
	}

	return sum, nil
}

func (s *Seeder) seedUser(ctx context.Context, u SampleUser) (bool, error) {
	_, err := s.users.GetByEmail(ctx, u.Email)
	if err == nil {
		s.logger.Debug("user exists, skipping", slog.String("email", u.Email))
		return false, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return false, fmt.Errorf("seed: looking up %s: %w", u.Email, err)
	}

	hash, err := s.passwords.Hash(u.Password)
	if err != nil {
		return false, fmt.Errorf("seed: hashing password for %s: %w", u.Email, err)
	}

	user := &model.User{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: hash,
		IsAdmin:      u.IsAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("seed: creating %s: %w", u.Email, err)
	}

	s.logger.Info("created user",
		slog.String("username", user.Username),
		slog.String("id", user.ID),
		slog.Bool("admin", user.IsAdmin),
	)
	return true, nil
}

func (s *Seeder) seedGame(ctx context.Context, g model.Game) (bool, error) {
	matches, err := s.games.List(ctx, repository.GameFilter{Search: g.Title, Limit: repository.MaxGameLimit})
	if err != nil {
		return false, fmt.Errorf("seed: looking up %q: %w", g.Title, err)
	}
	for _, m := range matches {
		if m.Title == g.Title {
			s.logger.Debug("game exists, skipping", slog.String("title", g.Title))
			return false, nil
		}
	}

	game := g
	game.Platforms = append(model.Platforms(nil), g.Platforms...)
	if err := s.games.Create(ctx, &game); err != nil {
		return false, fmt.Errorf("seed: creating %q: %w", g.Title, err)
	}

	s.logger.Info("created game", slog.String("title", game.Title), slog.String("id", game.ID))
	return true, nil
}
