package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strictpm/core/internal/ports"
)

// exerciseStore runs the KeyValueStore contract against any backend.
func exerciseStore(t *testing.T, store ports.KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, ports.TasksKey, []byte(`[]`)))
	require.NoError(t, store.Set(ctx, ports.NewsKey("2026-10-19"), []byte("headline")))

	got, err := store.Get(ctx, ports.TasksKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, store.Set(ctx, ports.TasksKey, []byte(`[{"id":"a"}]`)))
	got, err = store.Get(ctx, ports.TasksKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(got), "set overwrites")

	require.NoError(t, store.Delete(ctx, ports.TasksKey))
	_, err = store.Get(ctx, ports.TasksKey)
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Get(ctx, ports.NewsKey("2026-10-19"))
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	assert.NoError(t, store.Ping(ctx))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, ports.TasksKey, []byte(`[1]`)))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, ports.TasksKey)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))
}
