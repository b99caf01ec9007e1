package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justchokingaround/cicidraci/internal/config"
	"github.com/justchokingaround/cicidraci/internal/database"
)

// exerciseKV runs the behaviour every backend must share
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()

	_, ok, err := kv.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set("favorite_1", "true"))
	val, ok, err := kv.Get("favorite_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", val)

	require.NoError(t, kv.Set("favorite_1", "false"))
	val, _, err = kv.Get("favorite_1")
	require.NoError(t, err)
	assert.Equal(t, "false", val)

	require.NoError(t, kv.Set("favorite_2", "true"))
	require.NoError(t, kv.Remove("favorite_1"))
	_, ok, err = kv.Get("favorite_1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = kv.Get("favorite_2")
	require.NoError(t, err)
	assert.True(t, ok, "removing one key must not touch others")

	assert.NoError(t, kv.Remove("never-set"))
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exerciseKV(t, m)
	assert.Equal(t, 1, m.Len())
}

func TestSQLite(t *testing.T) {
	db, err := database.Open(&config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "kv.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	exerciseKV(t, NewSQLite(db))
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("CICIDRACI_TEST_REDIS")
	if addr == "" {
		t.Skip("CICIDRACI_TEST_REDIS not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	exerciseKV(t, NewRedis(client, "cicidraci-test:"+t.Name()+":"))
}

func TestOpen(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Backend = "memory"

		kv, closer, err := Open(cfg, nil)
		require.NoError(t, err)
		assert.IsType(t, &Memory{}, kv)
		assert.NoError(t, closer.Close())
	})

	t.Run("sqlite backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.Database.Path = filepath.Join(t.TempDir(), "state.db")

		kv, closer, err := Open(cfg, nil)
		require.NoError(t, err)
		assert.IsType(t, &SQLite{}, kv)
		require.NoError(t, kv.Set("k", "v"))
		assert.NoError(t, closer.Close())
	})

	t.Run("unreachable redis", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Backend = "redis"
		cfg.Redis.Addr = "127.0.0.1:1"

		_, _, err := Open(cfg, nil)
		require.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Backend = "localstorage"

		_, _, err := Open(cfg, nil)
		require.Error(t, err)
	})
}
