package config_test

import (
	"testing"
	"time"

	"butterfly-story/internal/config"
	"butterfly-story/shared/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useEmptySecretsDir(t *testing.T) {
	old := utils.SecretsDir
	utils.SecretsDir = t.TempDir()
	t.Cleanup(func() { utils.SecretsDir = old })
}

func TestLoadConfig_Defaults(t *testing.T) {
	useEmptySecretsDir(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.StoreMemory, cfg.StoreBackend)
	assert.Equal(t, int64(11155111), cfg.ChainID)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Empty(t, cfg.DBPassword)
}

func TestLoadConfig_Postgres(t *testing.T) {
	useEmptySecretsDir(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "db")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.StorePostgres, cfg.StoreBackend)
	assert.Equal(t, "postgres://postgres:pw@db:5432/butterfly?sslmode=disable", cfg.GetDSN())
	assert.NotContains(t, cfg.SafeDSN(), "pw")
}

func TestLoadConfig_Errors(t *testing.T) {
	useEmptySecretsDir(t)

	t.Run("Missing JWT secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := config.LoadConfig()
		assert.Error(t, err)
	})

	t.Run("Unknown backend", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("STORE_BACKEND", "sqlite")
		_, err := config.LoadConfig()
		assert.Error(t, err)
	})

	t.Run("Postgres without password", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("STORE_BACKEND", "postgres")
		t.Setenv("DB_PASSWORD", "")
		_, err := config.LoadConfig()
		assert.Error(t, err)
	})
}
