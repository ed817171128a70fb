package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, BreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute}), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 300))

	val, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), val)
	assert.Equal(t, 300*time.Second, mr.TTL("k"))

	_, found, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCacheTTL(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), 120))
	require.NoError(t, c.Set(ctx, "forever", []byte("v"), 0))
	assert.Equal(t, time.Duration(0), mr.TTL("forever"))

	mr.FastForward(121 * time.Second)

	_, found, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRedisCacheBreakerOpensWhenUnreachable(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()
	mr.Close()

	for range 2 {
		_, _, err := c.Get(ctx, "k")
		require.Error(t, err)
	}
	assert.Equal(t, "open", c.BreakerState())

	_, _, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestTieredOverUnreachableRedis(t *testing.T) {
	c, mr := newTestRedis(t)
	mr.Close()
	tiered := NewTieredCache(c, NewMemoryCache(), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, tiered.Set(ctx, "k", []byte("v"), 60))
	val, found, err := tiered.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), val)
}
