package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatforms_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Platforms
		wantErr bool
	}{
		{name: "array", input: `["PC","PlayStation 5"]`, want: Platforms{"PC", "PlayStation 5"}},
		{name: "single string is coerced", input: `"PC"`, want: Platforms{"PC"}},
		{name: "null", input: `null`, want: nil},
		{name: "number is rejected", input: `42`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Platforms
			err := json.Unmarshal([]byte(tt.input), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestGameUpdate_DropsAbsentFields(t *testing.T) {
	g := &Game{
		Title:       "X",
		ReleaseDate: "2030-01-01",
		Platforms:   Platforms{"PC"},
		Genre:       "RPG",
		Description: "keep me",
	}

	var u GameUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"genre":"Action","description":null}`), &u))
	u.Apply(g)

	assert.Equal(t, "Action", g.Genre)
	assert.Equal(t, "X", g.Title)
	assert.Equal(t, "keep me", g.Description, "null must not overwrite the stored value")
	assert.Equal(t, Platforms{"PC"}, g.Platforms)
}

func TestUser_PasswordHashNeverSerialised(t *testing.T) {
	u := User{ID: "u1", Username: "alice", Email: "a@x.com", PasswordHash: "$2a$04$secret"}

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
	assert.NotContains(t, string(out), "password")
}
