package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReleaseDateLayout is the calendar-date format games are stored and
// exchanged in. Because it is zero-padded year-month-day, string order is
// chronological order.
const ReleaseDateLayout = "2006-01-02"

// Game is a catalog entry for an upcoming (or released) video game.
type Game struct {
	ID             string         `json:"game_id"        db:"id"`
	Title          string         `json:"title"          db:"title"`
	ReleaseDate    string         `json:"release_date"   db:"release_date"`
	Platforms      Platforms      `json:"platforms"      db:"platforms"`
	Genre          string         `json:"genre"          db:"genre"`
	Description    string         `json:"description"    db:"description"`
	Specifications map[string]any `json:"specifications" db:"specifications"`
	CreatedAt      time.Time      `json:"created_at"     db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"     db:"updated_at"`
}

// HasPlatform reports whether platform is one of the game's platforms.
// The comparison is exact.
func (g *Game) HasPlatform(platform string) bool {
	for _, p := range g.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// Platforms is the ordered list of platforms a game ships on.
//
// Admin forms sometimes post a single platform as a plain string, so the
// JSON decoder accepts either "PC" or ["PC", "PlayStation 5"]. Both decode
// to a slice.
type Platforms []string

// UnmarshalJSON accepts a string or an array of strings.
func (p *Platforms) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = Platforms{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("platforms must be a string or an array of strings")
	}
	*p = Platforms(many)
	return nil
}

// GameUpdate carries a partial update. A nil field was absent (or null) in
// the request and leaves the stored value untouched.
type GameUpdate struct {
	Title          *string         `json:"title"`
	ReleaseDate    *string         `json:"release_date"`
	Platforms      *Platforms      `json:"platforms"`
	Genre          *string         `json:"genre"`
	Description    *string         `json:"description"`
	Specifications *map[string]any `json:"specifications"`
}

// Apply merges the non-nil fields of u into g.
func (u GameUpdate) Apply(g *Game) {
	if u.Title != nil {
		g.Title = *u.Title
	}
	if u.ReleaseDate != nil {
		g.ReleaseDate = *u.ReleaseDate
	}
	if u.Platforms != nil {
		g.Platforms = *u.Platforms
	}
	if u.Genre != nil {
		g.Genre = *u.Genre
	}
	if u.Description != nil {
		g.Description = *u.Description
	}
	if u.Specifications != nil {
		g.Specifications = *u.Specifications
	}
}
