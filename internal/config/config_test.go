package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigAppliesFileDefaultsAndSecrets(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
upstream:
  content_base_url: http://backend.test/api
  timeout: 3s
encryption:
  key: file-key
`)
	t.Setenv("BEAUTYDEN_ENCRYPTION_KEY", "env-key-0123456789abcdef01234567")
	t.Setenv("BEAUTYDEN_ENCRYPTION_IV", "env-iv")
	t.Setenv("BEAUTYDEN_SESSION_SECRET", testSecret)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "http://backend.test/api", cfg.Upstream.CustomerBaseURL)
	assert.Equal(t, "env-key-0123456789abcdef01234567", cfg.Encryption.Key)
	assert.Equal(t, "env-iv", cfg.Encryption.IV)
	assert.Equal(t, testSecret, cfg.Session.Secret)
	assert.Equal(t, "memory", cfg.Session.Storage)
	assert.Equal(t, 2, cfg.Upstream.MaxRetries)
	assert.Equal(t, "@every 10m", cfg.Refresh.Schedule)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
upstream:
  content_base_url: http://backend.test/api
`)
	t.Setenv("BEAUTYDEN_ENCRYPTION_KEY", "k")
	t.Setenv("BEAUTYDEN_SESSION_SECRET", testSecret)
	t.Setenv("BEAUTYDEN_SERVER_PORT", "7070")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Upstream:   UpstreamConfig{ContentBaseURL: "http://x"},
			Encryption: EncryptionConfig{Key: "k"},
			Session:    SessionConfig{Secret: testSecret, Storage: "memory"},
			Events:     EventsConfig{Driver: "memory"},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Encryption.Key = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Session.Secret = "short"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Session.Storage = "redis"
	assert.Error(t, cfg.Validate())
	cfg.Redis.URL = "redis://localhost:6379/0"
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Events.Driver = "kafka"
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
