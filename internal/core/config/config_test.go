package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "microblog", c.App.Name)
	assert.Equal(t, 8080, c.App.HTTP.Port)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.True(t, c.DB.AutoMigrate)
	assert.Equal(t, 300, c.Redis.ProfileTTLSec)
	assert.False(t, c.Redis.Enabled())
	assert.Equal(t, 20.0, c.Security.RateLimit)
	assert.Equal(t, 500.0, c.Security.GlobalRateLimit)
	assert.Equal(t, 1000, c.Security.GlobalRateBurst)
}

func TestLoad_FileAndEnvOverlay(t *testing.T) {
	path := writeConfig(t, `
app:
  http:
    port: 9090
db:
  driver: postgres
  dsn: host=db
redis:
  addr: cache:6379
`)
	t.Setenv("APP_DB_DSN", "host=override")
	t.Setenv("APP_LOG_LEVEL", "debug")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, "host=override", c.DB.DSN)
	assert.Equal(t, "debug", c.Log.Level)
	assert.True(t, c.Redis.Enabled())
}

func TestLoad_RequiresSecretOutsideLocal(t *testing.T) {
	path := writeConfig(t, "app:\n  env: prod\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrMissingSecret)

	t.Setenv("APP_JWT_SECRET", "s3cr3t")
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", c.JWT.Secret)
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "app: [unclosed"))
	assert.Error(t, err)
}
