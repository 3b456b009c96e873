package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := NewRedis(client, "storefront:")
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	file, err := NewFile(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	rds, _ := setupTestRedis(t)
	return map[string]Store{
		"memory": NewMemory(),
		"file":   file,
		"redis":  rds,
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Ping(ctx))

			_, ok, err := store.Get(ctx, "userToken")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(ctx, "userToken", "abc"))
			require.NoError(t, store.Set(ctx, "userName", "Al"))
			require.NoError(t, store.Set(ctx, "userName", "Alice"))

			v, ok, err := store.Get(ctx, "userName")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "Alice", v)

			require.NoError(t, store.Delete(ctx, "userToken", "userName", "missing"))
			_, ok, err = store.Get(ctx, "userToken")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Delete(ctx))
		})
	}
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	first, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "cartId", "c-1"))
	require.NoError(t, first.Set(ctx, "userId", "u-1"))
	require.NoError(t, first.Delete(ctx, "userId"))

	second, err := NewFile(path)
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, "cartId")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c-1", v)

	_, ok, _ = second.Get(ctx, "userId")
	assert.False(t, ok)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFile_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode store file")
}

func TestRedis_UsesPrefix(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "userId", "u-9"))
	got, err := mr.Get("storefront:userId")
	require.NoError(t, err)
	assert.Equal(t, "u-9", got)

	require.NoError(t, mr.Set("storefront:cartId", "c-9"))
	v, ok, err := store.Get(ctx, "cartId")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c-9", v)
}

func TestRedis_ErrorsWhenServerDown(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	ctx := context.Background()
	assert.Error(t, store.Ping(ctx))
	_, _, err := store.Get(ctx, "userId")
	assert.Error(t, err)
}
