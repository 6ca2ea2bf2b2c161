package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strictpm/core/internal/infrastructure/config"
	"github.com/strictpm/core/internal/infrastructure/database"
)

// Requires PostgreSQL reachable through the DB_* settings (default
// localhost:5432); skipped otherwise. The kv_store table is cleared.
func testPostgresConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := database.New(cfg.Database)
	if err != nil {
		t.Skipf("PostgreSQL not available at %s:%d: %v", cfg.Database.Host, cfg.Database.Port, err)
	}
	db.Close()

	cfg.Storage.Driver = config.DriverPostgres
	return cfg
}

func TestPostgresStore(t *testing.T) {
	cfg := testPostgresConfig(t)

	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestPostgresMigrateUpIsIdempotent(t *testing.T) {
	cfg := testPostgresConfig(t)

	db, err := database.New(cfg.Database)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.MigrateUp())
	require.NoError(t, db.MigrateUp())

	store := NewPostgresStore(db.DB)
	exerciseStore(t, store)
}
