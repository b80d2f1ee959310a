package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, int64(4096), cfg.Server.MaxRequestBodyBytes)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "bmicalc", cfg.Telemetry.Service)
}

func TestLoadFileFillsUnsetFields(t *testing.T) {
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvLogLevel, "")

	path := filepath.Join(t.TempDir(), "bmicalc.yaml")
	data := []byte(`
server:
  addr: "127.0.0.1:8080"
  max_in_flight_requests: 2
  write_timeout: 3s
logging:
  format: console
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, 2, cfg.Server.MaxInFlightRequests)
	assert.Equal(t, 3*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("server:\n  adr: \":1\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("BMICALC_ADDR replaces file addr", func(t *testing.T) {
		t.Setenv(EnvAddr, ":9999")
		t.Setenv(EnvLogLevel, "")

		path := filepath.Join(t.TempDir(), "bmicalc.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":8080\"\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":9999", cfg.Server.Addr)
	})

	t.Run("BMICALC_LOG_LEVEL is lowercased", func(t *testing.T) {
		t.Setenv(EnvAddr, "")
		t.Setenv(EnvLogLevel, "DEBUG")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})
}
