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
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "http://localhost:8080/api/v1"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "eb-admin", cfg.App.Name)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, 5*time.Minute, cfg.Backend.CacheTTL())
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxSizeBytes)
	assert.Contains(t, cfg.Upload.AllowedExtensions, ".pdf")
	assert.Equal(t, 30*time.Second, cfg.Health.Interval())
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_BACKEND_URL", "http://backend:9000/api/v1")

	path := writeConfig(t, `
backend:
  base_url: "${TEST_BACKEND_URL}"
  timeout_seconds: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000/api/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout())
}

func TestValidateRequiresBaseURL(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 3000
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
}

func TestValidateRejectsBadPort(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "http://localhost:8080/api/v1"
server:
  port: 99999
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestValidateTelegramNeedsChatID(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "http://localhost:8080/api/v1"
telegram:
  bot_token: "123:abc"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "staff_chat_id")
}

func TestValidateExtensionMustStartWithDot(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "http://localhost:8080/api/v1"
upload:
  allowed_extensions: ["pdf"]
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dot")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
