package model

import "time"

// Comment is a user's post on a game's page.
//
// Username is not stored with the comment. It is filled in when comments are
// read, from the author's current user record.
type Comment struct {
	ID        string    `json:"comment_id"`
	GameID    string    `json:"game_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Username  string    `json:"username,omitempty"`
}
