package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collabmapd.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "info", cfg.LogLevel)
	require.True(t, cfg.WebSocket.Enabled)
	require.True(t, cfg.QUIC.Enabled)
	require.NotEqual(t, cfg.WebSocket.Port, cfg.QUIC.Port)
}

func TestLoadFile(t *testing.T) {
	path := writeConfigFile(t, `
log_level: debug
websocket:
  enabled: true
  host: 0.0.0.0
  port: 9000
  read_timeout: 45s
quic:
  enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "0.0.0.0", cfg.WebSocket.Host)
	require.Equal(t, 9000, cfg.WebSocket.Port)
	require.Equal(t, "0.0.0.0:9000", cfg.WebSocket.Protocol().Addr())
	require.False(t, cfg.QUIC.Enabled)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "log_level: debug\n")
	t.Setenv("COLLABMAP_LOG_LEVEL", "warn")
	t.Setenv("COLLABMAP_WS_PORT", "9100")
	t.Setenv("COLLABMAP_QUIC_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, 9100, cfg.WebSocket.Port)
	require.False(t, cfg.QUIC.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfigFile(t, "websocket: [not a mapping\n")
	_, err := Load(path)
	require.Error(t, err)
}
