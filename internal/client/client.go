// Package client is a Go client for the VGB API.
//
// SESSION HANDLING:
// Register and Login store the returned token and user in the client's
// TokenStore; every call that needs a bearer token reads it back from there.
// Logout clears the store. The server keeps no session state, so logging
// out is purely local.
//
//	c := client.New("http://localhost:8080/api", client.WithTokenStore(client.NewFileStore(path)))
//	if _, err := c.Login(ctx, "alice@example.com", "secret1"); err != nil { ... }
//	games, err := c.ListGames(ctx, client.GameQuery{Genre: "RPG"})
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/vgb/internal/model"
)

// ErrNotSignedIn is returned by calls that need a token when the store is empty.
var ErrNotSignedIn = errors.New("client: not signed in")

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// StatusOf returns the HTTP status of an *APIError in err's chain, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Client talks to one API base URL.
type Client struct {
	baseURL string
	http    *http.Client
	store   TokenStore
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenStore sets where the session is kept. The default is a MemoryStore.
func WithTokenStore(ts TokenStore) Option {
	return func(c *Client) { c.store = ts }
}

// New creates a Client for baseURL, which includes the /api prefix.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		store:   &MemoryStore{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Token   string          `json:"token"`
}

// do sends one request and decodes the envelope's data into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body any, authed bool, out any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("client: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		s, err := c.store.Load()
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, ErrNotSignedIn
		}
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("client: decoding response: %w", err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "API request failed"
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("client: decoding data: %w", err)
		}
	}
	return &env, nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// Register creates an account and signs in as it.
func (c *Client) Register(ctx context.Context, username, email, password string) (*Session, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.signIn(ctx, "/users", body)
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	return c.signIn(ctx, "/users/login", body)
}

func (c *Client) signIn(ctx context.Context, path string, body any) (*Session, error) {
	var user model.User
	env, err := c.do(ctx, http.MethodPost, path, body, false, &user)
	if err != nil {
		return nil, err
	}
	s := &Session{Token: env.Token, User: &user}
	if err := c.store.Save(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Me fetches the signed-in user's record.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if _, err := c.do(ctx, http.MethodGet, "/users/me", nil, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Session returns the stored session, or nil when signed out.
func (c *Client) Session() (*Session, error) {
	return c.store.Load()
}

// Logout forgets the stored session.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// ---------------------------------------------------------------------------
// Games
// ---------------------------------------------------------------------------

// GameQuery filters ListGames. Zero fields are not sent.
type GameQuery struct {
	Genre    string
	Platform string
	Search   string
	Limit    int
	Offset   int
}

func (q GameQuery) encode() string {
	v := url.Values{}
	if q.Genre != "" {
		v.Set("genre", q.Genre)
	}
	if q.Platform != "" {
		v.Set("platform", q.Platform)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// ListGames lists releases, newest release date first.
func (c *Client) ListGames(ctx context.Context, q GameQuery) ([]model.Game, error) {
	var games []model.Game
	if _, err := c.do(ctx, http.MethodGet, "/releases"+q.encode(), nil, false, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (c *Client) GetGame(ctx context.Context, id string) (*model.Game, error) {
	var game model.Game
	if _, err := c.do(ctx, http.MethodGet, "/games/"+url.PathEscape(id), nil, false, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// CreateGame adds a game. Requires an admin session.
func (c *Client) CreateGame(ctx context.Context, g model.Game) (*model.Game, error) {
	body := map[string]any{
		"title":          g.Title,
		"release_date":   g.ReleaseDate,
		"platforms":      []string(g.Platforms),
		"genre":          g.Genre,
		"description":    g.Description,
		"specifications": g.Specifications,
	}
	var game model.Game
	if _, err := c.do(ctx, http.MethodPost, "/games", body, true, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// UpdateGame merges the non-nil fields of upd into a game. Requires an admin session.
func (c *Client) UpdateGame(ctx context.Context, id string, upd model.GameUpdate) (*model.Game, error) {
	var game model.Game
	if _, err := c.do(ctx, http.MethodPut, "/games/"+url.PathEscape(id), upd, true, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// DeleteGame removes a game. Requires an admin session.
func (c *Client) DeleteGame(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/games/"+url.PathEscape(id), nil, true, nil)
	return err
}

// ---------------------------------------------------------------------------
// Comments
// ---------------------------------------------------------------------------

func (c *Client) ListComments(ctx context.Context, gameID string) ([]model.Comment, error) {
	var comments []model.Comment
	if _, err := c.do(ctx, http.MethodGet, "/comments/games/"+url.PathEscape(gameID), nil, false, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) PostComment(ctx context.Context, gameID, content string) (*model.Comment, error) {
	var comment model.Comment
	body := map[string]string{"content": content}
	if _, err := c.do(ctx, http.MethodPost, "/comments/games/"+url.PathEscape(gameID), body, true, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/comments/"+url.PathEscape(id), nil, true, nil)
	return err
}

// ---------------------------------------------------------------------------
// Favorites
// ---------------------------------------------------------------------------

func (c *Client) ListFavorites(ctx context.Context, userID string) ([]model.FavoriteEntry, error) {
	var entries []model.FavoriteEntry
	if _, err := c.do(ctx, http.MethodGet, "/favorites/users/"+url.PathEscape(userID), nil, true, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) AddFavorite(ctx context.Context, userID, gameID string) (*model.Favorite, error) {
	var fav model.Favorite
	body := map[string]string{"game_id": gameID}
	if _, err := c.do(ctx, http.MethodPost, "/favorites/users/"+url.PathEscape(userID), body, true, &fav); err != nil {
		return nil, err
	}
	return &fav, nil
}

func (c *Client) RemoveFavorite(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/favorites/"+url.PathEscape(id), nil, true, nil)
	return err
}
