package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: ":9000"
jwt:
  secret: "s3cret"
game:
  startingChips: 500
  restartDelay: 2s
matchmaker:
  tableSize: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, int64(500), cfg.Game.StartingChips)
	assert.Equal(t, 2*time.Second, cfg.Game.RestartDelay)
	assert.Equal(t, 2, cfg.Matchmaker.TableSize)
	// 未配置的键取默认值
	assert.Equal(t, 12, cfg.Game.MaxPlayers)
	assert.Equal(t, 5*time.Minute, cfg.Matchmaker.PlayerTTL)
	assert.True(t, cfg.Auth.Required)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, *cfg, C)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: file\n")
	t.Setenv("POKER_JWT_SECRET", "env")
	t.Setenv("POKER_GAME_MAXPLAYERS", "9")
	t.Setenv("POKER_GAME_RESTARTDELAY", "10s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.JWT.Secret)
	assert.Equal(t, 9, cfg.Game.MaxPlayers)
	assert.Equal(t, 10*time.Second, cfg.Game.RestartDelay)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err, "explicit path must exist")
}

func TestLoadDefaultPathOptional(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("POKER_AUTH_REQUIRED", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Auth.Required)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, int64(1000), cfg.Game.StartingChips)
	assert.Equal(t, 6*time.Second, cfg.Game.RestartDelay)
}

func TestValidate(t *testing.T) {
	_, err := Load(writeConfig(t, "jwt:\n  secret: \"\"\n"))
	assert.ErrorContains(t, err, "jwt.secret")

	_, err = Load(writeConfig(t, "jwt:\n  secret: x\nmatchmaker:\n  tableSize: 20\n"))
	assert.ErrorContains(t, err, "matchmaker.tableSize")

	_, err = Load(writeConfig(t, "auth:\n  required: false\ngame:\n  startingChips: 0\n"))
	assert.ErrorContains(t, err, "startingChips")
}
