package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/vgb/internal/config"
	"github.com/sakif/vgb/internal/seed"
)

func TestRun_LogsNoPasswords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "vgb.db")},
		Auth:     config.AuthConfig{BcryptCost: bcrypt.MinCost},
	}
	require.NoError(t, run(context.Background(), cfg, logger))

	out := buf.String()
	assert.Contains(t, out, "admin@vgb.com")
	for _, u := range seed.Users {
		assert.NotContains(t, out, u.Password)
	}
}
