package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/vgb/internal/auth"
)

// PageHandler tells the frontend which page file the caller should see.
// It runs behind auth.OptionalAuth, so a missing or bad token means guest.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

type pageRoute struct {
	Role     auth.Role `json:"role"`
	Page     string    `json:"page"`
	Allowed  bool      `json:"allowed"`
	Redirect string    `json:"redirect"`
}

// HandleRoute resolves a requested page file for the caller's role.
//
// HTTP: GET /api/pages/{page} (optional bearer)
// RESPONSE: 200 {"success":true,"data":{"role":"user","page":"admin_calendar.html",
// "allowed":false,"redirect":"user_calendar.html"}}
func (h *PageHandler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	role := auth.RoleOf(id)
	page := chi.URLParam(r, "page")

	writeJSON(w, http.StatusOK, Response{Data: pageRoute{
		Role:     role,
		Page:     page,
		Allowed:  auth.CanView(role, page),
		Redirect: auth.RouteFor(role, page),
	}})
}
