package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 60))

	val, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), val)

	_, found, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCacheExpiresLazily(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 120))

	now = now.Add(119 * time.Second)
	_, found, _ := c.Get(ctx, "k")
	assert.True(t, found)

	now = now.Add(time.Second)
	_, found, _ = c.Get(ctx, "k")
	assert.False(t, found)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "zero", []byte("a"), 0))
	require.NoError(t, c.Set(ctx, "negative", []byte("b"), -5))

	now = now.AddDate(1, 0, 0)
	_, found, _ := c.Get(ctx, "zero")
	assert.True(t, found)
	_, found, _ = c.Get(ctx, "negative")
	assert.True(t, found)
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, 60))
	buf[0] = 'x'

	val, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), val)
}

func TestMemoryCacheLastWriteWins(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("first"), 60))
	require.NoError(t, c.Set(ctx, "k", []byte("second"), 60))

	val, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("second"), val)
}
