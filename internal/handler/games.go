package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/vgb/internal/apperror"
	"github.com/sakif/vgb/internal/auth"
	"github.com/sakif/vgb/internal/model"
	"github.com/sakif/vgb/internal/repository"
	"github.com/sakif/vgb/internal/service"
)

// GameHandler serves the game catalog. The same handler is mounted at
// /api/games and /api/releases.
type GameHandler struct {
	games  *service.GameService
	logger *slog.Logger
}

func NewGameHandler(games *service.GameService, logger *slog.Logger) *GameHandler {
	return &GameHandler{games: games, logger: logger}
}

// HandleList returns games, newest release first.
//
// HTTP: GET /api/games?genre=RPG&platform=PC&search=zelda&limit=50&offset=0
//
// QUERY PARAMETERS:
//   - genre:    exact match
//   - platform: exact member of the game's platforms
//   - search:   case-insensitive substring of title or description
//   - limit:    page size, default 50
//   - offset:   rows to skip
func (h *GameHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"), "limit")
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	offset, err := intParam(q.Get("offset"), "offset")
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}

	games, err := h.games.List(r.Context(), repository.GameFilter{
		Genre:    q.Get("genre"),
		Platform: q.Get("platform"),
		Search:   q.Get("search"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, h.logger, err, "Error fetching games")
		return
	}

	resp := Response{Data: games, Count: countOf(len(games))}
	if len(games) == 0 {
		resp.Message = "No games found"
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGet returns one game.
//
// HTTP: GET /api/games/{id}
func (h *GameHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	game, err := h.games.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err, "Error fetching game")
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: game})
}

// HandleCreate adds a game.
//
// HTTP: POST /api/games (bearer, admin)
// REQUEST BODY: {"title":"...","release_date":"2025-10-01","platforms":["PC"],"genre":"RPG",
// "description":"...","specifications":{"storage":"50GB"}}
//
// platforms may also be a single string.
func (h *GameHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	var in service.GameInput
	if err := decodeJSON(w, r, &in); err != nil {
		// The guard runs before any payload complaint.
		if adminErr := auth.RequireAdmin(id); adminErr != nil {
			err = adminErr
		}
		writeError(w, h.logger, err, "Error creating game")
		return
	}

	game, err := h.games.Create(r.Context(), id, in)
	if err != nil {
		writeError(w, h.logger, err, "Error creating game")
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Message: "Game created successfully",
		Data:    game,
	})
}

// HandleUpdate merges the provided fields into a game. Keys that are absent
// or null keep their stored value.
//
// HTTP: PUT /api/games/{id} (bearer, admin)
func (h *GameHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	var upd model.GameUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		if adminErr := auth.RequireAdmin(id); adminErr != nil {
			err = adminErr
		}
		writeError(w, h.logger, err, "Error updating game")
		return
	}

	game, err := h.games.Update(r.Context(), id, chi.URLParam(r, "id"), upd)
	if err != nil {
		writeError(w, h.logger, err, "Error updating game")
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Message: "Game updated successfully",
		Data:    game,
	})
}

// HandleDelete removes a game.
//
// HTTP: DELETE /api/games/{id} (bearer, admin)
func (h *GameHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	if err := h.games.Delete(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err, "Error deleting game")
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "Game deleted successfully"})
}

// intParam parses an optional non-negative integer query parameter.
func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.ValidationFailed(name, name+" must be a non-negative integer")
	}
	return n, nil
}
