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

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults are applied", func(t *testing.T) {
		// Given: a config file that only sets the mode
		path := writeConfig(t, "mode: host\n")

		// When: loading it
		conf, err := Load(path)

		// Then: everything else has its default
		require.NoError(t, err)
		assert.Equal(t, "host", conf.Mode)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, 5000, conf.Port)
		assert.Equal(t, 10*time.Second, conf.ConnectTimeout)
		assert.Equal(t, 10*time.Second, conf.HandshakeTimeout)
		assert.False(t, conf.History.Enabled)
		assert.Equal(t, "localhost:6379", conf.History.Redis.GetRedisAddr())
	})

	t.Run("File values", func(t *testing.T) {
		path := writeConfig(t, `
log-level: debug
mode: join
port: 6000
host-address: 10.0.0.7
connect-timeout: 1s
history:
  enabled: true
  limit: 5
  redis:
    host: redis
    port: "6380"
`)

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, 6000, conf.Port)
		assert.Equal(t, "10.0.0.7", conf.HostAddress)
		assert.Equal(t, time.Second, conf.ConnectTimeout)
		assert.True(t, conf.History.Enabled)
		assert.Equal(t, int64(5), conf.History.Limit)
		assert.Equal(t, "redis:6380", conf.History.Redis.GetRedisAddr())
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		t.Setenv("PORT", "7000")
		path := writeConfig(t, "port: 6000\n")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, 7000, conf.Port)
	})

	t.Run("Unknown mode is rejected", func(t *testing.T) {
		path := writeConfig(t, "mode: spectate\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, ErrInvalidMode)
	})

	t.Run("Port out of range is rejected", func(t *testing.T) {
		path := writeConfig(t, "port: 70000\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, ErrInvalidPort)
	})

	t.Run("MustLoad panics on a missing file", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
		})
	})
}
