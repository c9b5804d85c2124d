package handler

// RESPONSE HELPERS:
// Every endpoint answers with the same envelope:
//
//	{"success": true,  "data": ..., "message": "...", "count": 3, "token": "..."}
//	{"success": false, "message": "Game not found"}
//
// Only the fields that apply are present. writeJSON sends a success
// envelope, writeError maps a domain error to its status and sends the
// failure envelope.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/vgb/internal/apperror"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Response is the envelope returned by every API endpoint.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Token   string `json:"token,omitempty"`
	Path    string `json:"path,omitempty"`
}

// WriteJSON sends v with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set before the body is written; once Encode
// starts writing, later header changes are silently ignored.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	resp.Success = true
	WriteJSON(w, status, resp)
}

// WriteFailure sends a failure envelope with just a message.
func WriteFailure(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{Success: false, Message: message})
}

// countOf returns a pointer so that a count of zero is still serialized.
func countOf(n int) *int {
	return &n
}

// writeError maps a domain error to the appropriate HTTP status code and
// sends it.
//
// ERROR MAPPING:
//
//	ErrValidation   → 400
//	ErrUnauthorized → 401
//	ErrForbidden    → 403
//	ErrNotFound     → 404
//	ErrConflict     → 409
//	anything else   → 500 with fallback as the message
//
// errors.Is walks the whole chain, so an AppError wrapped with fmt.Errorf
// by the service still maps correctly. Internal errors are logged in full
// and never shown to the client.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		}
		if status != http.StatusInternalServerError {
			WriteFailure(w, status, appErr.Message)
			return
		}
	}

	logger.Error(fallback, slog.String("error", err.Error()))
	WriteFailure(w, http.StatusInternalServerError, fallback)
}

// decodeJSON reads a JSON request body into v. An empty body decodes to
// the zero value so that missing fields surface as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.ValidationFailed("", "Request body too large")
		}
		return apperror.ValidationFailed("", "Invalid JSON body")
	}
	return nil
}
