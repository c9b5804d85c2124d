package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/vgb/internal/apperror"
	"github.com/sakif/vgb/internal/auth"
	"github.com/sakif/vgb/internal/service"
)

// UserHandler serves registration, login and the current-user profile.
type UserHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewUserHandler(authSvc *service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{auth: authSvc, logger: logger}
}

// HandleRegister creates an account.
//
// HTTP: POST /api/users
// REQUEST BODY: {"username":"alice","email":"alice@example.com","password":"secret1"}
// RESPONSE: 201 {"success":true,"message":"...","data":{user},"token":"<jwt>"}
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err, "Error registering user")
		return
	}

	res, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err, "Error registering user")
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Message: "User registered successfully",
		Data:    res.User,
		Token:   res.Token,
	})
}

// HandleLogin exchanges email and password for a token.
//
// HTTP: POST /api/users/login
// REQUEST BODY: {"email":"alice@example.com","password":"secret1"}
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err, "Error logging in")
		return
	}

	res, err := h.auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err, "Error logging in")
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Message: "Login successful",
		Data:    res.User,
		Token:   res.Token,
	})
}

// HandleMe returns the authenticated user's record.
//
// HTTP: GET /api/users/me (bearer)
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("No token provided"), "")
		return
	}

	user, err := h.auth.Me(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err, "Error fetching user profile")
		return
	}

	writeJSON(w, http.StatusOK, Response{Data: user})
}
