package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technotes/notes-api/internal/infrastructure/db/redis"
)

func newTestCache(t *testing.T, ttl time.Duration) (*redis.UsernameCache, *miniredis.Miniredis) {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client, err := redis.Connect(context.Background(), redis.Config{Addr: s.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return redis.NewUsernameCache(client, ttl), s
}

func TestUsernameCache_SetAndGetMany(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetMany(ctx, map[string]string{"u1": "alice", "u2": "bob"}))

	got, err := cache.GetMany(ctx, []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u1": "alice", "u2": "bob"}, got)
}

func TestUsernameCache_GetManyEmpty(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	got, err := cache.GetMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUsernameCache_Invalidate(t *testing.T) {
	cache, s := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetMany(ctx, map[string]string{"u1": "alice"}))
	require.NoError(t, cache.Invalidate(ctx, "u1"))

	assert.False(t, s.Exists("username:u1"))
	got, err := cache.GetMany(ctx, []string{"u1"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUsernameCache_Expires(t *testing.T) {
	cache, s := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetMany(ctx, map[string]string{"u1": "alice"}))
	s.FastForward(2 * time.Minute)

	got, err := cache.GetMany(ctx, []string{"u1"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUsernameCache_ConnectionFailure(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })
	cache := redis.NewUsernameCache(client, 0)

	_, err := cache.GetMany(context.Background(), []string{"u1"})
	assert.Error(t, err)
}
