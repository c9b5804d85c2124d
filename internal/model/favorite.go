package model

import "time"

// Favorite links a user to a game they want to follow.
type Favorite struct {
	ID        string    `json:"favorite_id"`
	UserID    string    `json:"user_id"`
	GameID    string    `json:"game_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteEntry is a favorite resolved against the games collection, the
// shape returned when listing a user's favorites.
type FavoriteEntry struct {
	ID        string    `json:"favorite_id"`
	Game      Game      `json:"game"`
	CreatedAt time.Time `json:"created_at"`
}
