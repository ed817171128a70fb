package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
)

type BreakerConfig struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// RedisCache is the shared networked store. Calls go through a circuit
// breaker so an unreachable redis fails fast instead of adding latency to
// every feed request.
type RedisCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewRedisCache(client *redis.Client, cfg BreakerConfig) *RedisCache {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	return &RedisCache{
		client: client,
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "redis-cache",
			MaxRequests: 1,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.FailureThreshold
			},
		}),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	found := false
	val, err := c.breaker.Execute(func() ([]byte, error) {
		b, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		found = true
		return b, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, found, nil
}

// Set stores val; ttlSeconds <= 0 stores without expiry.
func (c *RedisCache) Set(ctx context.Context, key string, val []byte, ttlSeconds int) error {
	ttl := time.Duration(0)
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, key, val, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping connectivity
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// BreakerState is "closed", "half-open" or "open"; /health reports it.
func (c *RedisCache) BreakerState() string {
	return c.breaker.State().String()
}
