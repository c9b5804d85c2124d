package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/vgb/internal/auth"
	"github.com/sakif/vgb/internal/service"
)

// FavoriteHandler serves users' favorite lists.
type FavoriteHandler struct {
	favorites *service.FavoriteService
	logger    *slog.Logger
}

func NewFavoriteHandler(favorites *service.FavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, logger: logger}
}

type favoriteRequest struct {
	GameID string `json:"game_id"`
}

// HandleList returns a user's favorites with their games.
//
// HTTP: GET /api/favorites/users/{userId} (bearer, owner or admin)
func (h *FavoriteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	entries, err := h.favorites.ListForUser(r.Context(), id, chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, h.logger, err, "Error fetching favorites")
		return
	}

	resp := Response{Data: entries}
	if len(entries) == 0 {
		resp.Message = "No favorites yet"
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleAdd favorites a game.
//
// HTTP: POST /api/favorites/users/{userId} (bearer, owner)
// REQUEST BODY: {"game_id":"..."}
func (h *FavoriteHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	userID := chi.URLParam(r, "userId")

	var req favoriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err, "Error adding favorite")
		return
	}

	fav, err := h.favorites.Add(r.Context(), id, userID, req.GameID)
	if err != nil {
		writeError(w, h.logger, err, "Error adding favorite")
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Message: "Game added to favorites",
		Data:    fav,
	})
}

// HandleRemove deletes a favorite. Owner only.
//
// HTTP: DELETE /api/favorites/{id} (bearer)
func (h *FavoriteHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	if err := h.favorites.Remove(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err, "Error removing favorite")
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "Removed from favorites"})
}
