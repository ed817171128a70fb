// Package config loads service configuration in layers: built-in
// defaults, an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Logging  LoggingConfig  `koanf:"logging"`
	Feed     FeedConfig     `koanf:"feed"`
}

type ServerConfig struct {
	Port           int           `koanf:"port" validate:"min=1,max=65535"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gte=0"`
	// BatchConcurrency bounds the per-user workers of the batch endpoint.
	BatchConcurrency int      `koanf:"batch_concurrency" validate:"min=1"`
	CORSOrigins      []string `koanf:"cors_origins"`
	// RateLimitRequests per RateLimitWindow per client IP; 0 disables.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gte=0"`
}

type DatabaseConfig struct {
	URL      string `koanf:"url" validate:"required"`
	PoolSize int    `koanf:"pool_size" validate:"min=1"`
	Seed     bool   `koanf:"seed"`
}

type CacheConfig struct {
	// Backend is "redis" (redis primary with in-process fallback) or "memory".
	Backend          string        `koanf:"backend" validate:"oneof=redis memory"`
	RedisURL         string        `koanf:"redis_url" validate:"required_if=Backend redis"`
	PersonalTTL      time.Duration `koanf:"personal_ttl" validate:"gte=0"`
	TrendingTTL      time.Duration `koanf:"trending_ttl" validate:"gte=0"`
	BreakerFailures  uint32        `koanf:"breaker_failures"`
	BreakerOpenDelay time.Duration `koanf:"breaker_open_delay" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

type FeedConfig struct {
	CandidatePoolSize  int           `koanf:"candidate_pool_size" validate:"min=1"`
	ProviderTimeout    time.Duration `koanf:"provider_timeout" validate:"gte=0"`
	RecencyHalfLife    time.Duration `koanf:"recency_half_life" validate:"gt=0"`
	TrendingWindowDays int           `koanf:"trending_window_days" validate:"min=1"`
	SimilarityWindow   time.Duration `koanf:"similarity_window" validate:"gt=0"`
	RecencyHorizon     time.Duration `koanf:"recency_horizon" validate:"gt=0"`
	SeedLimit          int           `koanf:"seed_limit" validate:"min=1"`
	SimilarUsersLimit  int           `koanf:"similar_users_limit" validate:"min=1"`
	FallbackScore      float64       `koanf:"fallback_score" validate:"min=0,max=1"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) Validate() error {
	return validate.Struct(c)
}
