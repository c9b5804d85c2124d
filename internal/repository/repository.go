package repository

import (
	"context"

	"github.com/sakif/vgb/internal/model"
)

// Default and maximum page sizes for game listings.
const (
	DefaultGameLimit = 50
	MaxGameLimit     = 200
)

// GameFilter selects and pages games. Every filter is applied before the
// Limit/Offset window so a page is only short when the result set ends.
type GameFilter struct {
	Genre    string // exact match
	Platform string // exact membership in Platforms
	Search   string // case-insensitive substring of title or description
	Limit    int
	Offset   int
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// GameRepository lists games ordered by release date, newest first, with
// ties broken by id.
type GameRepository interface {
	Create(ctx context.Context, game *model.Game) error
	GetByID(ctx context.Context, id string) (*model.Game, error)
	List(ctx context.Context, filter GameFilter) ([]model.Game, error)
	Update(ctx context.Context, game *model.Game) error
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByGame(ctx context.Context, gameID string) ([]model.Comment, error)
	Delete(ctx context.Context, id string) error
}

type FavoriteRepository interface {
	Create(ctx context.Context, favorite *model.Favorite) error
	GetByID(ctx context.Context, id string) (*model.Favorite, error)
	// FindByUserAndGame returns apperror.ErrNotFound when the pair is absent.
	FindByUserAndGame(ctx context.Context, userID, gameID string) (*model.Favorite, error)
	ListByUser(ctx context.Context, userID string) ([]model.Favorite, error)
	Delete(ctx context.Context, id string) error
}

// Store bundles one backend's repositories with its lifecycle.
type Store interface {
	Users() UserRepository
	Games() GameRepository
	Comments() CommentRepository
	Favorites() FavoriteRepository
	Ping(ctx context.Context) error
	Close() error
}
