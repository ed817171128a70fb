// Package cache is the short-TTL result cache that fronts the expensive
// candidate providers. A networked redis store is primary; an in-process
// map takes over whenever redis is unreachable or disabled.
package cache

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
)

// Cache is a byte-oriented key/value store with per-entry TTL. A ttlSeconds
// of zero or less means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttlSeconds int) error
}

// GetJSON decodes a cached value into T. A malformed value is reported as an
// error so callers can treat it like a miss.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool, error) {
	var out T
	raw, found, err := c.Get(ctx, key)
	if err != nil || !found {
		return out, false, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("unmarshal cached value %s: %w", key, err)
	}
	return out, true, nil
}

func SetJSON[T any](ctx context.Context, c Cache, key string, val T, ttlSeconds int) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("marshal value for %s: %w", key, err)
	}
	return c.Set(ctx, key, raw, ttlSeconds)
}

func PersonalKey(userID int64, limit int) string {
	return fmt.Sprintf("feed:personal:user:%d:limit:%d", userID, limit)
}

func TrendingKey(windowDays, limit int) string {
	return fmt.Sprintf("feed:trending:window:%d:limit:%d", windowDays, limit)
}
