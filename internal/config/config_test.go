package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

func TestLoadDefaults(t *testing.T) {
	t.Setenv(FileEnv, "")

	cfg, err := Load(testLogger)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 10*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, "https://tle.ivanstanojevic.me/api/", cfg.APIBaseURL)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "satellites.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":9090"
db_path: /var/lib/satellites/cache.db
remote_timeout: 3s
probe_interval: 1m
log_level: debug
`), 0o600))

	t.Setenv(FileEnv, path)
	t.Setenv("SATELLITES_DB_PATH", "/tmp/override.db")
	t.Setenv("SATELLITES_PROBE_TIMEOUT", "2")

	cfg, err := Load(testLogger)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "/tmp/override.db", cfg.DBPath)
	assert.Equal(t, 3*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, time.Minute, cfg.ProbeInterval)
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoadInvalidEnvKeepsCurrent(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("SATELLITES_REMOTE_TIMEOUT", "soon")
	t.Setenv("SATELLITES_PROBE_INTERVAL", "0")
	t.Setenv("SATELLITES_TRUST_PROXY", "maybe")
	t.Setenv("SATELLITES_LOG_LEVEL", "loud")

	cfg, err := Load(testLogger)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 15*time.Second, cfg.ProbeInterval)
	assert.False(t, cfg.TrustProxy)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoadFileErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		t.Setenv(FileEnv, filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := Load(testLogger)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("remote_timeout: [1, 2"), 0o600))
		t.Setenv(FileEnv, path)
		_, err := Load(testLogger)
		assert.Error(t, err)
	})
}
