package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisAdapter_GetSet(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer adapter.Close()

	ctx := context.Background()

	key := "test_key"
	value := []byte("test_value")
	ttl := 10 * time.Second

	err = adapter.Set(ctx, key, value, ttl)
	assert.NoError(t, err)

	retrievedValue, err := adapter.Get(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, value, retrievedValue)
}

func TestRedisAdapter_GetNotFound(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer adapter.Close()

	ctx := context.Background()

	_, err = adapter.Get(ctx, "non_existent_key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "key not found")
}

func TestRedisAdapter_Delete(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer adapter.Close()

	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, adapter.Delete(ctx, "k"))

	_, err = adapter.Get(ctx, "k")
	assert.Error(t, err)
}

func TestRedisAdapter_HGetAll_MissingKey(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer adapter.Close()

	fields, err := adapter.HGetAll(context.Background(), "no_such_hash")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestRedisAdapter_ReplaceAll(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer adapter.Close()

	ctx := context.Background()

	// Seed an old generation that must disappear entirely.
	require.NoError(t, adapter.ReplaceAll(ctx, map[string]map[string]string{
		"orders": {"stale": "1", "kept": "old"},
		"shops":  {"s1": "old"},
	}))

	err = adapter.ReplaceAll(ctx, map[string]map[string]string{
		"orders": {"kept": "new", "fresh": "2"},
		"shops":  {"s1": "new"},
		"meta":   {"last_fetch": "now"},
	})
	require.NoError(t, err)

	orders, err := adapter.HGetAll(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"kept": "new", "fresh": "2"}, orders)

	shops, err := adapter.HGetAll(ctx, "shops")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"s1": "new"}, shops)

	meta, err := adapter.HGetAll(ctx, "meta")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"last_fetch": "now"}, meta)
}

func TestRedisAdapter_ReplaceAll_EmptyHashDeletes(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer adapter.Close()

	ctx := context.Background()

	require.NoError(t, adapter.ReplaceAll(ctx, map[string]map[string]string{
		"shops": {"s1": "x"},
	}))
	require.NoError(t, adapter.ReplaceAll(ctx, map[string]map[string]string{
		"shops": {},
	}))

	shops, err := adapter.HGetAll(ctx, "shops")
	require.NoError(t, err)
	assert.Empty(t, shops)
}

func TestRedisAdapter_InvalidURL(t *testing.T) {
	_, err := NewRedisAdapter("not-a-url")
	assert.Error(t, err)
}

func TestRedisAdapter_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer adapter.Close()

	assert.NoError(t, adapter.Ping(context.Background()))
}
