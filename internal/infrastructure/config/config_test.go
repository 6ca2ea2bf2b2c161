package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "StrictPM", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "strictpm.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "strictpm:", cfg.Redis.KeyPrefix)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("APP_TIMEZONE", "Asia/Shanghai")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, "localhost:6380", cfg.Redis.GetAddr())
	assert.Equal(t, "secret", cfg.AI.APIKey)
	assert.NoError(t, cfg.AI.RequireAI())
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)

	loc, err := cfg.App.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Shanghai", loc.String())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "floppy")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestRequireAI(t *testing.T) {
	cfg := AIConfig{}
	assert.Error(t, cfg.RequireAI())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.GetDSN())
}
