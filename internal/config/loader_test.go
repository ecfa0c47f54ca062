package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
telegram:
  token: "123456:test-token"
  admin_user_id: 42
`

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "telearr.db", cfg.Database.Path)
	assert.Equal(t, 15*time.Minute, cfg.Health.Interval)
	assert.Equal(t, 7878, cfg.Radarr.Server.Port)
	assert.Equal(t, 9091, cfg.Transmission.Port)

	healthTask, ok := cfg.Scheduler.Tasks["health_check"]
	require.True(t, ok)
	assert.True(t, healthTask.Enabled)
	assert.Equal(t, "*/15 * * * *", healthTask.Schedule)

	maintenanceTask, ok := cfg.Scheduler.Tasks["store_maintenance"]
	require.True(t, ok)
	assert.Equal(t, "0 4 * * *", maintenanceTask.Schedule)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TELEARR_TELEGRAM_TOKEN", "123456:env-token")
	t.Setenv("TELEARR_TELEGRAM_ADMIN_USER_ID", "42")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "123456:env-token", cfg.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Telegram.AdminUserID)
}

func TestLoadConfigRejectsMissingToken(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
telegram:
  admin_user_id: 42
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadConfigRejectsBadLogLevel(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, minimalConfig+`
log:
  level: verbose
`))
	require.Error(t, err)
}

func TestServerConfigURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      ServerConfig
		expected string
	}{
		{"plain http", ServerConfig{Addr: "localhost", Port: 7878}, "http://localhost:7878"},
		{"with ssl", ServerConfig{Addr: "radarr.local", Port: 443, SSL: true}, "https://radarr.local:443"},
		{"with base path", ServerConfig{Addr: "localhost", Port: 8989, Path: "/sonarr"}, "http://localhost:8989/sonarr"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, tc.cfg.URL())
		})
	}
}

func TestIsUserAllowed(t *testing.T) {
	t.Parallel()

	cfg := &Config{Telegram: TelegramConfig{AdminUserID: 1, AllowedUserIDs: []int64{2, 3}}}
	assert.True(t, cfg.IsUserAllowed(1), "admin always allowed")
	assert.True(t, cfg.IsUserAllowed(2))
	assert.False(t, cfg.IsUserAllowed(4))

	open := &Config{Telegram: TelegramConfig{AdminUserID: 1}}
	assert.True(t, open.IsUserAllowed(99), "empty allow-list admits everyone")
}
