package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleOf(t *testing.T) {
	assert.Equal(t, RoleGuest, RoleOf(nil))
	assert.Equal(t, RoleUser, RoleOf(&Identity{UserID: "u"}))
	assert.Equal(t, RoleAdmin, RoleOf(&Identity{UserID: "a", IsAdmin: true}))
}

func TestRequiredRoleAndCanView(t *testing.T) {
	cases := []struct {
		page     string
		required Role
		guest    bool
		user     bool
		admin    bool
	}{
		{"index.html", RoleGuest, true, true, true},
		{"calendar.html", RoleGuest, true, true, true},
		{"user_reviews.html", RoleUser, false, true, true},
		{"admin_calendar.html", RoleAdmin, false, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.page, func(t *testing.T) {
			assert.Equal(t, tc.required, RequiredRole(tc.page))
			assert.Equal(t, tc.guest, CanView(RoleGuest, tc.page))
			assert.Equal(t, tc.user, CanView(RoleUser, tc.page))
			assert.Equal(t, tc.admin, CanView(RoleAdmin, tc.page))
		})
	}
}

func TestRouteFor(t *testing.T) {
	cases := []struct {
		role Role
		page string
		want string
	}{
		{RoleGuest, "calendar", "calendar.html"},
		{RoleUser, "calendar.html", "user_calendar.html"},
		{RoleAdmin, "user_reviews.html", "admin_reviews.html"},
		{RoleAdmin, "", "admin_index.html"},
		{RoleUser, "index", "user_index.html"},
		{RoleUser, "settings", "index.html"},
		{Role("superuser"), "calendar", "index.html"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RouteFor(tc.role, tc.page), "RouteFor(%s, %q)", tc.role, tc.page)
	}
}
