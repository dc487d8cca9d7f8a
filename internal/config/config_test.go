package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://abc.example.co")
	t.Setenv("BACKEND_ANON_KEY", "anon")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, ModeREST, cfg.BackendMode)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.RetryMax)
	assert.Equal(t, int64(2<<20), cfg.UploadLimit())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingBackend(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "BACKEND_URL")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("RETRY_DELAY", "soon")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "RETRY_DELAY")
}

func TestValidate(t *testing.T) {
	setRequired(t)
	t.Setenv("BACKEND_MODE", "postgres")
	t.Setenv("LOG_FORMAT", "xml")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
	assert.Contains(t, err.Error(), "BACKEND_JWT_SECRET is required")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestValidate_PostgresNeedsJWTSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("BACKEND_MODE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://novelhub@localhost/novelhub")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "BACKEND_JWT_SECRET is required")

	cfg.BackendJWTSecret = "super-secret"
	assert.NoError(t, cfg.Validate())
}

func TestParseSize(t *testing.T) {
	n, err := ParseSize("2MB")
	require.NoError(t, err)
	assert.Equal(t, int64(2*1024*1024), n)

	n, err = ParseSize("512kb")
	require.NoError(t, err)
	assert.Equal(t, int64(512*1024), n)

	_, err = ParseSize("lots")
	assert.Error(t, err)
}

func TestCLIConfig_SaveAndLoad(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("BACKEND_ANON_KEY", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	missing, err := LoadCLIConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "keyring", missing.TokenStore)
	assert.Error(t, missing.Validate())

	cfg := &CLIConfig{BackendURL: "https://abc.example.co", AnonKey: "anon", TokenStore: "file"}
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadCLIConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://abc.example.co", loaded.BackendURL)
	assert.Equal(t, "file", loaded.TokenStore)
	assert.Equal(t, 30*time.Second, loaded.RequestTimeout)
	assert.NoError(t, loaded.Validate())

	t.Setenv("BACKEND_URL", "https://override.example.co")
	overridden, err := LoadCLIConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://override.example.co", overridden.BackendURL)
}
