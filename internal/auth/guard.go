package auth

import "github.com/sakif/vgb/internal/apperror"

// CanAccessOwned reports whether id may act on a resource owned by
// ownerUserID: the owner itself, or any admin.
func CanAccessOwned(id *Identity, ownerUserID string) bool {
	if id == nil {
		return false
	}
	return id.UserID == ownerUserID || id.IsAdmin
}

// IsOwner reports whether id is exactly ownerUserID. Admins get no override.
func IsOwner(id *Identity, ownerUserID string) bool {
	return id != nil && id.UserID != "" && id.UserID == ownerUserID
}

// RequireAdmin returns a Forbidden error unless id is an admin.
func RequireAdmin(id *Identity) error {
	if id == nil || !id.IsAdmin {
		return apperror.Forbidden("Admin access required")
	}
	return nil
}
