package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCache struct {
	gets, sets int
}

func (b *brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	b.gets++
	return nil, false, errors.New("dial tcp: connection refused")
}

func (b *brokenCache) Set(context.Context, string, []byte, int) error {
	b.sets++
	return errors.New("dial tcp: connection refused")
}

func TestTieredCacheUsesPrimaryWhenHealthy(t *testing.T) {
	primary, fallback := NewMemoryCache(), NewMemoryCache()
	c := NewTieredCache(primary, fallback, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 60))
	assert.Equal(t, 1, primary.Len())
	assert.Equal(t, 0, fallback.Len())

	val, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), val)
}

func TestTieredCacheDegradesToFallback(t *testing.T) {
	primary, fallback := &brokenCache{}, NewMemoryCache()
	c := NewTieredCache(primary, fallback, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 60))
	assert.Equal(t, 1, primary.sets)
	assert.Equal(t, 1, fallback.Len())

	val, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), val)
	assert.Equal(t, 1, primary.gets)
}

func TestTieredCacheWithoutPrimary(t *testing.T) {
	fallback := NewMemoryCache()
	c := NewTieredCache(nil, fallback, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestJSONHelpers(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	type payload struct {
		Title string  `json:"title"`
		Score float64 `json:"score"`
	}
	want := []payload{{Title: "Dune", Score: 0.8}}
	require.NoError(t, SetJSON(ctx, c, "k", want, 60))

	got, found, err := GetJSON[[]payload](ctx, c, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	require.NoError(t, c.Set(ctx, "bad", []byte("{not json"), 60))
	_, found, err = GetJSON[[]payload](ctx, c, "bad")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestKeysAreTypeScoped(t *testing.T) {
	assert.Equal(t, "feed:personal:user:7:limit:100", PersonalKey(7, 100))
	assert.Equal(t, "feed:trending:window:7:limit:100", TrendingKey(7, 100))
}
