package weave

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weave.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Full(t *testing.T) {
	path := writeConfig(t, `
data_dir: /var/lib/weave
persistence:
  backend: redis
  redis:
    url: redis://cache:6379
    key_prefix: "weave:test"
    connect_timeout: 2s
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/weave", cfg.DataDir)
	assert.Equal(t, BackendRedis, cfg.Persistence.Backend)
	assert.Equal(t, "redis://cache:6379", cfg.Persistence.Redis.URL)
	assert.Equal(t, "weave:test", cfg.Persistence.Redis.KeyPrefix)
}

func TestLoadConfig_DefaultsFillIn(t *testing.T) {
	path := writeConfig(t, `{}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, BackendFile, cfg.Persistence.Backend)
}

func TestLoadConfig_UnknownBackend(t *testing.T) {
	path := writeConfig(t, `
persistence:
  backend: carrier-pigeon
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown persistence backend")
}

func TestLoadConfig_BadTimeout(t *testing.T) {
	path := writeConfig(t, `
persistence:
  backend: redis
  redis:
    connect_timeout: soon
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect_timeout")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Persistence.Backend = "nope"
	assert.Error(t, cfg.Validate())
}
