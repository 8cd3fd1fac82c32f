package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "STORE_BACKEND", "DB_DRIVER", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"NATS_URL", "FREEIMAGE_API_KEY", "PIT_OPEN_THRESHOLD",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 60, cfg.Match.PitOpenThreshold)
	assert.Equal(t, 30*time.Second, cfg.Match.WinnerDisplay)
	assert.Equal(t, time.Second, cfg.Server.BroadcastInterval)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
match:
  pit_open_threshold: 45
  winner_display: 20s
  draw_reveal_delay: 2s
  winner_reward_points: 5
server:
  port: "9000"
  broadcast_interval: 500ms
store:
  backend: redis
  redis_prefix: arena
`), 0o600))

	t.Setenv("PORT", "7000")
	t.Setenv("NATS_URL", "nats://nats:4222")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Match.PitOpenThreshold)
	assert.Equal(t, 20*time.Second, cfg.Match.WinnerDisplay)
	assert.Equal(t, 2*time.Second, cfg.Match.DrawRevealDelay)
	assert.Equal(t, 5, cfg.Match.WinnerRewardPoints)
	assert.Equal(t, 30*time.Second, cfg.Match.DrawDisplay)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Server.BroadcastInterval)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "arena", cfg.Store.RedisPrefix)
	assert.Equal(t, "localhost:6379", cfg.Store.RedisAddr)
	assert.Equal(t, "nats://nats:4222", cfg.Mirror.NATSURL)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("match: [unclosed"), 0o600))

	_, err := loadConfig(path)
	assert.Error(t, err)
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("MATCH_TEST_INT", "12")
	assert.Equal(t, 12, getEnvAsInt("MATCH_TEST_INT", 3))
	t.Setenv("MATCH_TEST_INT", "twelve")
	assert.Equal(t, 3, getEnvAsInt("MATCH_TEST_INT", 3))
}
