package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, "feedloader:page:", ttl)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisStore_GetSet(t *testing.T) {
	store, mr := setupRedisStore(t, 0)
	ctx := context.Background()
	key := "http://localhost/api/topics?page=1"

	_, err := store.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrMiss))

	require.NoError(t, store.Set(ctx, key, []byte(`{"success":true}`)))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"success":true}`, string(got))

	raw, err := mr.Get("feedloader:page:" + key)
	require.NoError(t, err)
	assert.Equal(t, `{"success":true}`, raw)
	assert.Equal(t, time.Duration(0), mr.TTL("feedloader:page:"+key))
}

func TestRedisStore_TTLExpires(t *testing.T) {
	store, mr := setupRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	assert.Equal(t, time.Minute, mr.TTL("feedloader:page:k"))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestRedisStore_ConnectionError(t *testing.T) {
	store, mr := setupRedisStore(t, 0)
	mr.Close()

	_, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMiss))
	assert.Contains(t, err.Error(), "redis get k")
}
