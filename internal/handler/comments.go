package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/vgb/internal/auth"
	"github.com/sakif/vgb/internal/service"
)

// CommentHandler serves comments on games.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type commentRequest struct {
	Content string `json:"content"`
}

// HandleList returns a game's comments, newest first.
//
// HTTP: GET /api/comments/games/{gameId}
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListForGame(r.Context(), chi.URLParam(r, "gameId"))
	if err != nil {
		writeError(w, h.logger, err, "Error fetching comments")
		return
	}

	resp := Response{Data: comments}
	if len(comments) == 0 {
		resp.Message = "No comments yet"
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCreate posts a comment.
//
// HTTP: POST /api/comments/games/{gameId} (bearer)
// REQUEST BODY: {"content":"Can't wait!"}
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err, "Error posting comment")
		return
	}

	comment, err := h.comments.Create(r.Context(), id, chi.URLParam(r, "gameId"), req.Content)
	if err != nil {
		writeError(w, h.logger, err, "Error posting comment")
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Message: "Comment posted successfully",
		Data:    comment,
	})
}

// HandleDelete removes a comment. Author or admin only.
//
// HTTP: DELETE /api/comments/{id} (bearer)
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	if err := h.comments.Delete(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err, "Error deleting comment")
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "Comment deleted successfully"})
}
