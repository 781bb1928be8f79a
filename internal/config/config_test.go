package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	content := `
server:
  host: "127.0.0.1"
  port: 9000
  allowed_origins:
    - "https://example.com"
redis:
  addr: "redis:6379"
game:
  time_per_question: 20
  max_players: 4
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 20, cfg.Game.TimePerQuestion)
	assert.Equal(t, 4, cfg.Game.MaxPlayers)

	// Unset fields fall back to defaults
	assert.Equal(t, 4096, cfg.Server.MaxConnections)
	assert.Equal(t, 15, cfg.Game.SelectionTimeout)
	assert.Equal(t, 5, cfg.Game.ResultsInterval)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "0.0.0.0:1780", cfg.Server.Addr())
	assert.Equal(t, 8, cfg.Game.MaxPlayers)
	assert.Equal(t, 30*time.Second, cfg.Game.TimePerQuestionDuration())
	assert.Equal(t, 15*time.Second, cfg.Game.SelectionTimeoutDuration())
	assert.Equal(t, 5*time.Second, cfg.Game.ResultsIntervalDuration())
	assert.Equal(t, 10*time.Minute, cfg.Game.LobbyTimeoutDuration())
}
