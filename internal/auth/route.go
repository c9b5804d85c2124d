package auth

import "strings"

// Role is the page-level role of a visitor.
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Page file prefixes that gate access.
const (
	adminPrefix = "admin_"
	userPrefix  = "user_"
)

// RoleOf maps an identity to its page role. nil is a guest.
func RoleOf(id *Identity) Role {
	switch {
	case id == nil:
		return RoleGuest
	case id.IsAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// RequiredRole returns the role a page file needs: admin_* pages need an
// admin, user_* pages need any logged-in user, everything else is public.
func RequiredRole(page string) Role {
	switch {
	case strings.HasPrefix(page, adminPrefix):
		return RoleAdmin
	case strings.HasPrefix(page, userPrefix):
		return RoleUser
	default:
		return RoleGuest
	}
}

// CanView reports whether role may open page.
func CanView(role Role, page string) bool {
	switch RequiredRole(page) {
	case RoleAdmin:
		return role == RoleAdmin
	case RoleUser:
		return role == RoleUser || role == RoleAdmin
	default:
		return true
	}
}

// BasePage strips the role prefix and the .html suffix:
// "admin_calendar.html" → "calendar". An empty file name is "index".
func BasePage(page string) string {
	base := strings.TrimPrefix(page, adminPrefix)
	base = strings.TrimPrefix(base, userPrefix)
	base = strings.TrimSuffix(base, ".html")
	if base == "" {
		return "index"
	}
	return base
}

// RouteFor returns the page file a role lands on for the logical page:
// guests get "calendar.html", users "user_calendar.html", admins
// "admin_calendar.html". Unknown pages and roles fall back to the guest
// index.
func RouteFor(role Role, page string) string {
	base := BasePage(page)
	switch base {
	case "index", "calendar", "reviews":
	default:
		return "index.html"
	}

	switch role {
	case RoleAdmin:
		return adminPrefix + base + ".html"
	case RoleUser:
		return userPrefix + base + ".html"
	case RoleGuest:
		return base + ".html"
	default:
		return "index.html"
	}
}
