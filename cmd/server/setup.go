package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/actuallystonmai/bookfeed-service/internal/cache"
	"github.com/actuallystonmai/bookfeed-service/internal/config"
	"github.com/actuallystonmai/bookfeed-service/internal/feed"
	"github.com/actuallystonmai/bookfeed-service/internal/handler"
	"github.com/actuallystonmai/bookfeed-service/internal/provider"
	"github.com/actuallystonmai/bookfeed-service/internal/repository"
	"github.com/actuallystonmai/bookfeed-service/internal/router"
	"github.com/actuallystonmai/bookfeed-service/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// setup wires repository, cache, providers and HTTP stack. The returned
// cleanup closes whatever setup opened.
func setup(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (http.Handler, func(), error) {
	repo := repository.NewRepository(pool)

	resultCache, cacheState, cleanup, err := buildCache(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, nil, err
	}

	personalized := provider.NewPersonalized(repo, repo, personalizedConfig(cfg.Feed), logger)
	trending := provider.NewTrending(repo, repo, cfg.Feed.TrendingWindowDays, logger)
	social := provider.NewSocial(repo, repo, logger)

	composer := feed.NewComposer(personalized, trending, social, resultCache, composerConfig(cfg), logger)
	svc := service.NewService(repo, composer, cfg.Server.BatchConcurrency, logger)
	h := handler.NewHandler(svc, logger)

	return router.Setup(h, logger, router.Options{
		RequestTimeout:    cfg.Server.RequestTimeout,
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.Server.RateLimitRequests,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
		CacheState:        cacheState,
	}), cleanup, nil
}

// buildCache returns redis backed by the in-process store, or the in-process
// store alone, plus the redis breaker state for /health (nil without redis).
// An unreachable redis at startup is logged, not fatal.
func buildCache(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger) (cache.Cache, func() string, func(), error) {
	local := cache.NewMemoryCache()
	if cfg.Backend != "redis" {
		logger.Info().Msg("using in-process result cache")
		return cache.NewTieredCache(nil, local, logger), nil, func() {}, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	rc := cache.NewRedisCache(client, cache.BreakerConfig{
		FailureThreshold: cfg.BreakerFailures,
		OpenTimeout:      cfg.BreakerOpenDelay,
	})
	if err := rc.Ping(ctx); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable, serving from in-process cache until it recovers")
	} else {
		logger.Info().Msg("connected to Redis")
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn().Err(err).Msg("close redis client")
		}
	}
	return cache.NewTieredCache(rc, local, logger), rc.BreakerState, cleanup, nil
}

func personalizedConfig(f config.FeedConfig) provider.PersonalizedConfig {
	pc := provider.DefaultPersonalizedConfig()
	pc.SimilarityWindow = f.SimilarityWindow
	pc.RecencyHorizon = f.RecencyHorizon
	pc.SeedLimit = f.SeedLimit
	pc.SimilarUsersLimit = f.SimilarUsersLimit
	pc.FallbackScore = f.FallbackScore
	return pc
}

func composerConfig(cfg *config.Config) feed.Config {
	return feed.Config{
		CandidatePoolSize:  cfg.Feed.CandidatePoolSize,
		PersonalTTL:        cfg.Cache.PersonalTTL,
		TrendingTTL:        cfg.Cache.TrendingTTL,
		TrendingWindowDays: cfg.Feed.TrendingWindowDays,
		RecencyHalfLife:    cfg.Feed.RecencyHalfLife,
		ProviderTimeout:    cfg.Feed.ProviderTimeout,
	}
}
