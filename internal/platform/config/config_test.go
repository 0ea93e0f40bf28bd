package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("PORT", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, AuthModeDev, cfg.Auth.Mode)
	assert.Equal(t, "memory", cfg.Blob.Driver)
	assert.Equal(t, "log", cfg.Notify.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Reminders.Interval)
	assert.Equal(t, 72*time.Hour, cfg.Reminders.StaleAfter)
	assert.Equal(t, 7*24*time.Hour, cfg.Reminders.Lead)
	assert.Equal(t, int64(5<<20), cfg.Uploads.MaxBytes)
}

func TestLoad_YAMLThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
http:
  addr: ":9000"
auth:
  mode: jwt
  jwt_secret: from-file
reminders:
  stale_after: 48h
admin:
  user_ids: ["admin-1"]
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("ADOPTIPET_AUTH_JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, AuthModeJWT, cfg.Auth.Mode)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 48*time.Hour, cfg.Reminders.StaleAfter)
	assert.True(t, cfg.IsAdminUser("admin-1"))
	assert.False(t, cfg.IsAdminUser("user-1"))
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://u:p@localhost:5432/adoptipet")
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost:5432/adoptipet", cfg.DB.DSN)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestValidate_RejectsIncompleteDrivers(t *testing.T) {
	t.Setenv("ADOPTIPET_AUTH_MODE", "jwt")
	t.Setenv("ADOPTIPET_BLOB_DRIVER", "s3")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret")
	assert.Contains(t, err.Error(), "blob.bucket")
}
