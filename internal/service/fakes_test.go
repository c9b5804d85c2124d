package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/sakif/vgb/internal/apperror"
	"github.com/sakif/vgb/internal/model"
	"github.com/sakif/vgb/internal/repository"
)

// =========================================================================
// IN-MEMORY FAKES
// =========================================================================
//
// Each fake implements one repository interface over a map and mirrors the
// store's contract: NotFound for missing ids, Conflict on duplicate keys.
// Setting failErr makes every call fail, to exercise storage-error paths.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*model.User
	nextID  int
	failErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperror.Conflict("email", "Email already registered")
		}
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	for _, u := range f.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

type fakeGameRepo struct {
	mu     sync.Mutex
	games  map[string]*model.Game
	nextID int
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[string]*model.Game)}
}

func (f *fakeGameRepo) Create(_ context.Context, g *model.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	g.ID = fmt.Sprintf("game-%02d", f.nextID)
	stored := *g
	f.games[g.ID] = &stored
	return nil
}

func (f *fakeGameRepo) GetByID(_ context.Context, id string) (*model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[id]
	if !ok {
		return nil, apperror.NotFound("game", id)
	}
	out := *g
	return &out, nil
}

func (f *fakeGameRepo) List(_ context.Context, filter repository.GameFilter) ([]model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.Game{}
	for _, g := range f.games {
		if filter.Genre != "" && g.Genre != filter.Genre {
			continue
		}
		if filter.Platform != "" && !g.HasPlatform(filter.Platform) {
			continue
		}
		if q := strings.ToLower(filter.Search); q != "" &&
			!strings.Contains(strings.ToLower(g.Title), q) &&
			!strings.Contains(strings.ToLower(g.Description), q) {
			continue
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReleaseDate != out[j].ReleaseDate {
			return out[i].ReleaseDate > out[j].ReleaseDate
		}
		return out[i].ID < out[j].ID
	})

	if filter.Offset >= len(out) {
		return []model.Game{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeGameRepo) Update(_ context.Context, g *model.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.games[g.ID]; !ok {
		return apperror.NotFound("game", g.ID)
	}
	stored := *g
	f.games[g.ID] = &stored
	return nil
}

func (f *fakeGameRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.games[id]; !ok {
		return apperror.NotFound("game", id)
	}
	delete(f.games, id)
	return nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[string]*model.Comment
	nextID   int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*model.Comment)}
}

func (f *fakeCommentRepo) Create(_ context.Context, c *model.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = fmt.Sprintf("comment-%02d", f.nextID)
	stored := *c
	f.comments[c.ID] = &stored
	return nil
}

func (f *fakeCommentRepo) GetByID(_ context.Context, id string) (*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	out := *c
	return &out, nil
}

func (f *fakeCommentRepo) ListByGame(_ context.Context, gameID string) ([]model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Comment{}
	for _, c := range f.comments {
		if c.GameID == gameID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	delete(f.comments, id)
	return nil
}

type fakeFavoriteRepo struct {
	mu        sync.Mutex
	favorites map[string]*model.Favorite
	nextID    int
	// skipLookup makes FindByUserAndGame always miss, so Create's unique
	// check is the only guard left.
	skipLookup bool
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{favorites: make(map[string]*model.Favorite)}
}

func (f *fakeFavoriteRepo) Create(_ context.Context, fav *model.Favorite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.favorites {
		if existing.UserID == fav.UserID && existing.GameID == fav.GameID {
			return apperror.Conflict("game_id", "Game already in favorites")
		}
	}
	f.nextID++
	fav.ID = fmt.Sprintf("fav-%02d", f.nextID)
	stored := *fav
	f.favorites[fav.ID] = &stored
	return nil
}

func (f *fakeFavoriteRepo) GetByID(_ context.Context, id string) (*model.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fav, ok := f.favorites[id]
	if !ok {
		return nil, apperror.NotFound("favorite", id)
	}
	out := *fav
	return &out, nil
}

func (f *fakeFavoriteRepo) FindByUserAndGame(_ context.Context, userID, gameID string) (*model.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.skipLookup {
		for _, fav := range f.favorites {
			if fav.UserID == userID && fav.GameID == gameID {
				out := *fav
				return &out, nil
			}
		}
	}
	return nil, apperror.NotFound("favorite", userID+"/"+gameID)
}

func (f *fakeFavoriteRepo) ListByUser(_ context.Context, userID string) ([]model.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Favorite{}
	for _, fav := range f.favorites {
		if fav.UserID == userID {
			out = append(out, *fav)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeFavoriteRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.favorites[id]; !ok {
		return apperror.NotFound("favorite", id)
	}
	delete(f.favorites, id)
	return nil
}
