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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://market.example.com/api
realtime:
  endpoint: wss://market.example.com/ws/websocket
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://market.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, "wss://market.example.com/ws/websocket", cfg.Realtime.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Realtime.ReconnectDelay)
	assert.Equal(t, 4*time.Second, cfg.Realtime.HeartbeatIncoming)
	assert.Equal(t, 4*time.Second, cfg.Realtime.HeartbeatOutgoing)
	assert.Equal(t, 5, cfg.Realtime.MaxReconnectAttempts)
	assert.Equal(t, 30*time.Second, cfg.Polling.NotificationsInterval)
	assert.Equal(t, 30*time.Second, cfg.Polling.PaymentsInterval)
	assert.Equal(t, "auction_updates", cfg.Redis.Channel)
}

func TestLoadFromFileRejectsInvalidCeiling(t *testing.T) {
	path := writeConfig(t, `
realtime:
  max_reconnect_attempts: 0
`)

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFromFileParsesDurations(t *testing.T) {
	path := writeConfig(t, `
polling:
  notifications_interval: 10s
  payments_interval: 1m
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Polling.NotificationsInterval)
	assert.Equal(t, time.Minute, cfg.Polling.PaymentsInterval)
}
