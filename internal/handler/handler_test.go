package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/vgb/internal/auth"
	"github.com/sakif/vgb/internal/handler"
	"github.com/sakif/vgb/internal/model"
	"github.com/sakif/vgb/internal/repository/sqlite"
	"github.com/sakif/vgb/internal/service"
)

// =========================================================================
// TEST HARNESS
// =========================================================================
//
// Handlers run against real services over an in-memory sqlite store. Path
// parameters and the caller identity are injected into the request context
// directly, so each test exercises one handler without the router.

type harness struct {
	store     *sqlite.DB
	users     *handler.UserHandler
	games     *handler.GameHandler
	comments  *handler.CommentHandler
	favorites *handler.FavoriteHandler
	health    *handler.HealthHandler
}

var (
	admin = &auth.Identity{UserID: "admin-id", Username: "Admin", IsAdmin: true}
	alice = &auth.Identity{UserID: "alice-id", Username: "alice"}
	bob   = &auth.Identity{UserID: "bob-id", Username: "bob"}
)

func newHarness(t *testing.T) *harness {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", 0)
	require.NoError(t, err)

	authSvc := service.NewAuthService(store.Users(), tokens, auth.NewPasswordServiceForTest(bcrypt.MinCost), logger)
	gameSvc := service.NewGameService(store.Games(), logger)
	commentSvc := service.NewCommentService(store.Comments(), store.Games(), store.Users(), logger)
	favoriteSvc := service.NewFavoriteService(store.Favorites(), store.Games(), logger)

	return &harness{
		store:     store,
		users:     handler.NewUserHandler(authSvc, logger),
		games:     handler.NewGameHandler(gameSvc, logger),
		comments:  handler.NewCommentHandler(commentSvc, logger),
		favorites: handler.NewFavoriteHandler(favoriteSvc, logger),
		health:    handler.NewHealthHandler(store, logger),
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Token   string          `json:"token"`
}

type call struct {
	method string
	target string
	body   string
	id     *auth.Identity
	params map[string]string
}

func (c call) do(t *testing.T, h http.HandlerFunc) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(c.method, c.target, strings.NewReader(c.body))
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for k, v := range c.params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if c.id != nil {
		ctx = auth.WithIdentity(ctx, c.id)
	}

	rec := httptest.NewRecorder()
	h(rec, req.WithContext(ctx))

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec, env
}

func (h *harness) createGame(t *testing.T, body string) model.Game {
	t.Helper()
	rec, env := call{method: http.MethodPost, target: "/api/games", body: body, id: admin}.do(t, h.games.HandleCreate)
	require.Equal(t, http.StatusCreated, rec.Code, env.Message)
	var g model.Game
	require.NoError(t, json.Unmarshal(env.Data, &g))
	return g
}

// =========================================================================
// USERS
// =========================================================================

func TestUserHandler_RegisterLoginMe(t *testing.T) {
	h := newHarness(t)

	rec, env := call{method: http.MethodPost, target: "/api/users",
		body: `{"username":"alice","email":"alice@example.com","password":"secret1"}`}.do(t, h.users.HandleRegister)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Token)
	assert.NotContains(t, rec.Body.String(), "password")

	var user model.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.False(t, user.IsAdmin)

	rec, env = call{method: http.MethodPost, target: "/api/users",
		body: `{"username":"again","email":"alice@example.com","password":"secret1"}`}.do(t, h.users.HandleRegister)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already registered", env.Message)

	rec, env = call{method: http.MethodPost, target: "/api/users/login",
		body: `{"email":"alice@example.com","password":"secret1"}`}.do(t, h.users.HandleLogin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login successful", env.Message)
	assert.NotEmpty(t, env.Token)

	rec, env = call{method: http.MethodGet, target: "/api/users/me",
		id: &auth.Identity{UserID: user.ID}}.do(t, h.users.HandleMe)
	require.Equal(t, http.StatusOK, rec.Code)
	var me model.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "alice@example.com", me.Email)
}

func TestUserHandler_RegisterValidation(t *testing.T) {
	h := newHarness(t)

	cases := map[string]struct {
		body    string
		message string
	}{
		"missing fields": {`{"username":"a"}`, "Missing required fields: username, email, password"},
		"short password": {`{"username":"a","email":"a@x.io","password":"123"}`, "Password must be at least 6 characters"},
		"bad json":       {`{"username":`, "Invalid JSON body"},
		"empty body":     {``, "Missing required fields: username, email, password"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec, env := call{method: http.MethodPost, target: "/api/users", body: tc.body}.do(t, h.users.HandleRegister)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tc.message, env.Message)
		})
	}
}

func TestUserHandler_LoginFailuresAreIdentical(t *testing.T) {
	h := newHarness(t)

	rec, _ := call{method: http.MethodPost, target: "/api/users",
		body: `{"username":"alice","email":"alice@example.com","password":"secret1"}`}.do(t, h.users.HandleRegister)
	require.Equal(t, http.StatusCreated, rec.Code)

	wrongRec, wrong := call{method: http.MethodPost, target: "/api/users/login",
		body: `{"email":"alice@example.com","password":"wrong-pass"}`}.do(t, h.users.HandleLogin)
	unknownRec, unknown := call{method: http.MethodPost, target: "/api/users/login",
		body: `{"email":"nobody@example.com","password":"secret1"}`}.do(t, h.users.HandleLogin)

	assert.Equal(t, http.StatusUnauthorized, wrongRec.Code)
	assert.Equal(t, wrongRec.Code, unknownRec.Code)
	assert.Equal(t, "Invalid email or password", wrong.Message)
	assert.Equal(t, wrong.Message, unknown.Message)
}

// =========================================================================
// GAMES
// =========================================================================

func TestGameHandler_AdminMutationsAndNonAdminForbidden(t *testing.T) {
	h := newHarness(t)

	g := h.createGame(t, `{"title":"Halo","release_date":"2025-11-01","platforms":"Xbox","genre":"Shooter"}`)
	assert.Equal(t, model.Platforms{"Xbox"}, g.Platforms)

	for name, c := range map[string]struct {
		fn   http.HandlerFunc
		call call
	}{
		"create":          {h.games.HandleCreate, call{method: http.MethodPost, body: `{}`, id: alice}},
		"create bad json": {h.games.HandleCreate, call{method: http.MethodPost, body: `{`, id: alice}},
		"update":          {h.games.HandleUpdate, call{method: http.MethodPut, body: `{"genre":"x"}`, id: alice, params: map[string]string{"id": g.ID}}},
		"delete":          {h.games.HandleDelete, call{method: http.MethodDelete, id: alice, params: map[string]string{"id": g.ID}}},
	} {
		t.Run(name, func(t *testing.T) {
			c.call.target = "/api/games"
			rec, env := c.call.do(t, c.fn)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "Admin access required", env.Message)
		})
	}

	rec, env := call{method: http.MethodPut, target: "/api/games/" + g.ID, body: `{"genre":"FPS","title":null}`,
		id: admin, params: map[string]string{"id": g.ID}}.do(t, h.games.HandleUpdate)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.Game
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "FPS", updated.Genre)
	assert.Equal(t, "Halo", updated.Title)

	rec, _ = call{method: http.MethodDelete, target: "/api/games/" + g.ID, id: admin,
		params: map[string]string{"id": g.ID}}.do(t, h.games.HandleDelete)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = call{method: http.MethodGet, target: "/api/games/" + g.ID,
		params: map[string]string{"id": g.ID}}.do(t, h.games.HandleGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Game not found", env.Message)
}

func TestGameHandler_CreateValidation(t *testing.T) {
	h := newHarness(t)

	rec, env := call{method: http.MethodPost, target: "/api/games", body: `{"title":"X"}`, id: admin}.do(t, h.games.HandleCreate)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields: title, release_date, platforms, genre", env.Message)
}

func TestGameHandler_ListFiltersAndCount(t *testing.T) {
	h := newHarness(t)

	h.createGame(t, `{"title":"Old","release_date":"2024-01-01","platforms":["PC"],"genre":"RPG"}`)
	h.createGame(t, `{"title":"New","release_date":"2025-06-01","platforms":["PC","PS5"],"genre":"RPG"}`)
	h.createGame(t, `{"title":"Racer","release_date":"2025-03-01","platforms":["Switch"],"genre":"Racing","description":"fast cars"}`)

	rec, env := call{method: http.MethodGet, target: "/api/games"}.do(t, h.games.HandleList)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 3, *env.Count)

	var games []model.Game
	require.NoError(t, json.Unmarshal(env.Data, &games))
	assert.Equal(t, "New", games[0].Title)
	assert.Equal(t, "Racer", games[1].Title)

	rec, env = call{method: http.MethodGet, target: "/api/releases?platform=PC&limit=1&offset=1"}.do(t, h.games.HandleList)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &games))
	require.Len(t, games, 1)
	assert.Equal(t, "Old", games[0].Title)

	_, env = call{method: http.MethodGet, target: "/api/games?search=CARS"}.do(t, h.games.HandleList)
	require.NoError(t, json.Unmarshal(env.Data, &games))
	require.Len(t, games, 1)
	assert.Equal(t, "Racer", games[0].Title)

	_, env = call{method: http.MethodGet, target: "/api/games?genre=Puzzle"}.do(t, h.games.HandleList)
	assert.Equal(t, "No games found", env.Message)
	require.NotNil(t, env.Count)
	assert.Equal(t, 0, *env.Count)

	rec, _ = call{method: http.MethodGet, target: "/api/games?limit=abc"}.do(t, h.games.HandleList)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =========================================================================
// COMMENTS
// =========================================================================

func TestCommentHandler_Lifecycle(t *testing.T) {
	h := newHarness(t)
	g := h.createGame(t, `{"title":"Halo","release_date":"2025-11-01","platforms":["Xbox"],"genre":"Shooter"}`)
	params := map[string]string{"gameId": g.ID}

	rec, env := call{method: http.MethodGet, target: "/api/comments/games/" + g.ID, params: params}.do(t, h.comments.HandleList)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No comments yet", env.Message)

	rec, env = call{method: http.MethodPost, target: "/", body: `{"content":"   "}`, id: alice, params: params}.do(t, h.comments.HandleCreate)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Comment content is required", env.Message)

	rec, _ = call{method: http.MethodPost, target: "/", body: `{"content":"hi"}`, id: alice,
		params: map[string]string{"gameId": "missing"}}.do(t, h.comments.HandleCreate)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = call{method: http.MethodPost, target: "/", body: `{"content":"  hype  "}`, id: alice, params: params}.do(t, h.comments.HandleCreate)
	require.Equal(t, http.StatusCreated, rec.Code)
	var c model.Comment
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, "hype", c.Content)
	assert.Equal(t, "alice", c.Username)

	idParams := map[string]string{"id": c.ID}
	rec, env = call{method: http.MethodDelete, target: "/", id: bob, params: idParams}.do(t, h.comments.HandleDelete)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You can only delete your own comments", env.Message)

	rec, _ = call{method: http.MethodDelete, target: "/", id: admin, params: idParams}.do(t, h.comments.HandleDelete)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = call{method: http.MethodDelete, target: "/", id: alice, params: idParams}.do(t, h.comments.HandleDelete)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =========================================================================
// FAVORITES
// =========================================================================

func TestFavoriteHandler_Lifecycle(t *testing.T) {
	h := newHarness(t)
	g := h.createGame(t, `{"title":"Halo","release_date":"2025-11-01","platforms":["Xbox"],"genre":"Shooter"}`)
	aliceParams := map[string]string{"userId": alice.UserID}
	body := `{"game_id":"` + g.ID + `"}`

	rec, env := call{method: http.MethodPost, target: "/", body: body, id: alice, params: aliceParams}.do(t, h.favorites.HandleAdd)
	require.Equal(t, http.StatusCreated, rec.Code)
	var fav model.Favorite
	require.NoError(t, json.Unmarshal(env.Data, &fav))

	rec, env = call{method: http.MethodPost, target: "/", body: body, id: alice, params: aliceParams}.do(t, h.favorites.HandleAdd)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Game already in favorites", env.Message)

	rec, _ = call{method: http.MethodPost, target: "/", body: `{}`, id: alice, params: aliceParams}.do(t, h.favorites.HandleAdd)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = call{method: http.MethodPost, target: "/", body: `{"game_id":"nope"}`, id: alice, params: aliceParams}.do(t, h.favorites.HandleAdd)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = call{method: http.MethodPost, target: "/", body: body, id: bob, params: aliceParams}.do(t, h.favorites.HandleAdd)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = call{method: http.MethodGet, target: "/", id: admin, params: aliceParams}.do(t, h.favorites.HandleList)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []model.FavoriteEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Halo", entries[0].Game.Title)

	rec, _ = call{method: http.MethodGet, target: "/", id: bob, params: aliceParams}.do(t, h.favorites.HandleList)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	favParams := map[string]string{"id": fav.ID}
	rec, _ = call{method: http.MethodDelete, target: "/", id: admin, params: favParams}.do(t, h.favorites.HandleRemove)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = call{method: http.MethodDelete, target: "/", id: alice, params: favParams}.do(t, h.favorites.HandleRemove)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Removed from favorites", env.Message)
}

// =========================================================================
// HEALTH
// =========================================================================

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthHandler(t *testing.T) {
	h := newHarness(t)

	rec := httptest.NewRecorder()
	h.health.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rec.Body.String(), `"service":"VGB API"`)

	down := handler.NewHealthHandler(downStore{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec = httptest.NewRecorder()
	down.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
}
