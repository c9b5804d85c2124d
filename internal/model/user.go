// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Email is the login key and is unique across users. PasswordHash holds the
// bcrypt output and is tagged `json:"-"` so it can never end up in a
// response body, no matter which handler encodes the struct.
//
// IsAdmin is set when the record is created (false for self-registration,
// true only for seeded administrators) and is never changed afterwards.
type User struct {
	ID           string    `json:"user_id"    db:"id"`
	Username     string    `json:"username"   db:"username"`
	Email        string    `json:"email"      db:"email"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	IsAdmin      bool      `json:"is_admin"   db:"is_admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
