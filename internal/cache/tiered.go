package cache

import (
	"context"

	"github.com/rs/zerolog"
)

// TieredCache reads and writes the primary store and degrades to the
// fallback on any primary error. It never returns an error itself.
type TieredCache struct {
	primary  Cache
	fallback Cache
	logger   zerolog.Logger
}

// NewTieredCache wraps primary with fallback. A nil primary means the shared
// store is disabled and every call goes to fallback.
func NewTieredCache(primary, fallback Cache, logger zerolog.Logger) *TieredCache {
	return &TieredCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With().Str("component", "cache").Logger(),
	}
}

func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.primary != nil {
		val, found, err := c.primary.Get(ctx, key)
		if err == nil {
			return val, found, nil
		}
		c.logger.Warn().Err(err).Str("key", key).Msg("primary cache get failed, using local fallback")
	}

	val, found, err := c.fallback.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("fallback cache get failed")
		return nil, false, nil
	}
	return val, found, nil
}

func (c *TieredCache) Set(ctx context.Context, key string, val []byte, ttlSeconds int) error {
	if c.primary != nil {
		err := c.primary.Set(ctx, key, val, ttlSeconds)
		if err == nil {
			return nil
		}
		c.logger.Warn().Err(err).Str("key", key).Msg("primary cache set failed, using local fallback")
	}

	if err := c.fallback.Set(ctx, key, val, ttlSeconds); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("fallback cache set failed")
	}
	return nil
}
