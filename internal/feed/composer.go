// Package feed composes a single ranked, deduplicated and paginated book
// feed out of the personalized, trending and following providers.
//
// A provider that fails, panics or times out contributes nothing; the rest
// of the feed is still returned. Each call builds its own working set, so
// the Composer is safe for concurrent use as long as its Cache is.
package feed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/actuallystonmai/bookfeed-service/internal/cache"
	"github.com/actuallystonmai/bookfeed-service/internal/domain"
	"github.com/actuallystonmai/bookfeed-service/internal/metrics"
	"github.com/actuallystonmai/bookfeed-service/internal/provider"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type PersonalSource interface {
	PersonalizedPicks(ctx context.Context, userID int64, limit int) ([]provider.PersonalPick, error)
}

type TrendingSource interface {
	TrendingBooks(ctx context.Context, limit, windowDays int) ([]provider.TrendingBook, error)
}

type SocialSource interface {
	FollowedUsersUpdates(ctx context.Context, userID int64, limit int, since *time.Time) ([]provider.FollowedUpdate, error)
}

type Config struct {
	// CandidatePoolSize is the minimum number of candidates asked from
	// each provider; deeper pages raise it to page*limit.
	CandidatePoolSize  int
	PersonalTTL        time.Duration
	TrendingTTL        time.Duration
	TrendingWindowDays int
	RecencyHalfLife    time.Duration
	ProviderTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		CandidatePoolSize:  100,
		PersonalTTL:        5 * time.Minute,
		TrendingTTL:        2 * time.Minute,
		TrendingWindowDays: 7,
		RecencyHalfLife:    36 * time.Hour,
		ProviderTimeout:    3 * time.Second,
	}
}

type Composer struct {
	personal PersonalSource
	trending TrendingSource
	social   SocialSource
	cache    cache.Cache
	cfg      Config
	logger   zerolog.Logger
	now      func() time.Time
}

// NewComposer wires the providers and the result cache. A nil cache
// disables caching.
func NewComposer(personal PersonalSource, trending TrendingSource, social SocialSource, c cache.Cache, cfg Config, logger zerolog.Logger) *Composer {
	return &Composer{
		personal: personal,
		trending: trending,
		social:   social,
		cache:    c,
		cfg:      cfg,
		logger:   logger.With().Str("component", "feed").Logger(),
		now:      time.Now,
	}
}

// ComposeFeed builds one page of the user's feed. opts must already be
// validated. An empty feed is a valid result; an error is only returned
// when ctx itself is done.
func (c *Composer) ComposeFeed(ctx context.Context, userID int64, opts domain.FeedOptions) (*domain.FeedResponse, error) {
	start := time.Now()
	defer func() { metrics.ComposeDuration.Observe(time.Since(start).Seconds()) }()

	types := uniqueSources(opts.Types)
	fetchLimit := fetchSize(c.cfg.CandidatePoolSize, opts.Page, opts.Limit)

	batches := c.fetchAll(ctx, userID, types, fetchLimit, opts.Since)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("compose feed for user %d: %w", userID, err)
	}

	now := c.now()
	var entries []entry
	for _, batch := range batches {
		for _, pc := range batch {
			entries = append(entries, normalize(pc, now))
		}
	}

	ranked := unread(rank(dedupe(entries), now, c.cfg.RecencyHalfLife), opts.Since)
	metrics.FeedCandidates.Observe(float64(len(ranked)))

	pageEntries := paginate(ranked, opts.Page, opts.Limit)
	items := make([]domain.FeedItem, 0, len(pageEntries))
	for _, e := range pageEntries {
		items = append(items, domain.FeedItem{
			ID:             uuid.NewString(),
			Source:         e.cand.Source,
			Score:          e.cand.Score,
			Rank:           e.rank,
			CreatedAt:      e.cand.CreatedAt,
			FriendlyReason: e.friendly,
			Book:           e.cand.Book,
		})
	}

	c.logger.Debug().
		Int64("user_id", userID).
		Int("candidates", len(entries)).
		Int("total", len(ranked)).
		Int("returned", len(items)).
		Msg("feed composed")

	return &domain.FeedResponse{
		Page:  opts.Page,
		Limit: opts.Limit,
		Total: len(ranked),
		Items: items,
	}, nil
}

// UnreadCount is the number of feed items newer than since.
func (c *Composer) UnreadCount(ctx context.Context, userID int64, types []domain.Source, since time.Time) (int, error) {
	resp, err := c.ComposeFeed(ctx, userID, domain.FeedOptions{
		Page:  1,
		Limit: 1,
		Types: types,
		Since: &since,
	})
	if err != nil {
		return 0, err
	}
	return resp.Total, nil
}

// fetchAll calls every requested provider concurrently. The result is
// indexed like types so merge order does not depend on scheduling.
func (c *Composer) fetchAll(ctx context.Context, userID int64, types []domain.Source, limit int, since *time.Time) [][]ProviderCandidate {
	batches := make([][]ProviderCandidate, len(types))

	var g errgroup.Group
	for i, src := range types {
		g.Go(func() error {
			batches[i] = c.fetchSource(ctx, src, userID, limit, since)
			return nil
		})
	}
	_ = g.Wait()

	return batches
}

func (c *Composer) fetchSource(ctx context.Context, src domain.Source, userID int64, limit int, since *time.Time) (out []ProviderCandidate) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.providerFailed(src, userID, &ProviderError{Source: src, Reason: FailurePanic, Err: fmt.Errorf("%v", r)})
			out = nil
		}
		metrics.ProviderDuration.WithLabelValues(string(src)).Observe(time.Since(start).Seconds())
	}()

	pctx := ctx
	if c.cfg.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, c.cfg.ProviderTimeout)
		defer cancel()
	}

	var err error
	switch src {
	case domain.SourcePersonal:
		out, err = c.fetchPersonal(pctx, userID, limit)
	case domain.SourceTrending:
		out, err = c.fetchTrending(pctx, limit)
	case domain.SourceFollowing:
		out, err = c.fetchFollowing(pctx, userID, limit, since)
	default:
		err = fmt.Errorf("unknown source %q", src)
	}

	if err != nil {
		reason := FailureError
		if errors.Is(err, context.DeadlineExceeded) {
			reason = FailureTimeout
		}
		c.providerFailed(src, userID, &ProviderError{Source: src, Reason: reason, Err: err})
		return nil
	}
	return out
}

func (c *Composer) providerFailed(src domain.Source, userID int64, err *ProviderError) {
	metrics.ProviderFailures.WithLabelValues(string(src), err.Reason).Inc()
	c.logger.Warn().
		Err(err).
		Str("provider", string(src)).
		Str("reason", err.Reason).
		Int64("user_id", userID).
		Msg("provider failed, contributing no candidates")
}

func (c *Composer) fetchPersonal(ctx context.Context, userID int64, limit int) ([]ProviderCandidate, error) {
	if c.personal == nil {
		return nil, errors.New("personal provider not configured")
	}
	key := cache.PersonalKey(userID, limit)
	picks, err := cached(ctx, c, domain.SourcePersonal, key, c.cfg.PersonalTTL, func() ([]provider.PersonalPick, error) {
		return c.personal.PersonalizedPicks(ctx, userID, limit)
	})
	if err != nil {
		return nil, err
	}
	out := make([]ProviderCandidate, 0, len(picks))
	for _, p := range picks {
		out = append(out, Personal{p})
	}
	return out, nil
}

func (c *Composer) fetchTrending(ctx context.Context, limit int) ([]ProviderCandidate, error) {
	if c.trending == nil {
		return nil, errors.New("trending provider not configured")
	}
	key := cache.TrendingKey(c.cfg.TrendingWindowDays, limit)
	books, err := cached(ctx, c, domain.SourceTrending, key, c.cfg.TrendingTTL, func() ([]provider.TrendingBook, error) {
		return c.trending.TrendingBooks(ctx, limit, c.cfg.TrendingWindowDays)
	})
	if err != nil {
		return nil, err
	}
	out := make([]ProviderCandidate, 0, len(books))
	for _, b := range books {
		out = append(out, Trending{b})
	}
	return out, nil
}

// fetchFollowing is always live.
func (c *Composer) fetchFollowing(ctx context.Context, userID int64, limit int, since *time.Time) ([]ProviderCandidate, error) {
	if c.social == nil {
		return nil, errors.New("social provider not configured")
	}
	updates, err := c.social.FollowedUsersUpdates(ctx, userID, limit, since)
	if err != nil {
		return nil, err
	}
	out := make([]ProviderCandidate, 0, len(updates))
	for _, u := range updates {
		if u.Activity.Book == nil {
			continue
		}
		out = append(out, Following{u})
	}
	return out, nil
}

// cached is a read-through lookup. A cache error is handled exactly like a
// miss: the provider is called live and the result written back.
func cached[T any](ctx context.Context, c *Composer, src domain.Source, key string, ttl time.Duration, load func() ([]T, error)) ([]T, error) {
	if c.cache == nil {
		return load()
	}

	hit, found, err := cache.GetJSON[[]T](ctx, c.cache, key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues(string(src), "error").Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("cache get failed, calling provider")
	case found:
		metrics.CacheLookups.WithLabelValues(string(src), "hit").Inc()
		return hit, nil
	default:
		metrics.CacheLookups.WithLabelValues(string(src), "miss").Inc()
	}

	fresh, err := load()
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, c.cache, key, fresh, int(ttl/time.Second)); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
	return fresh, nil
}

// fetchSize is max(pool, page*limit), saturating at math.MaxInt.
func fetchSize(pool, page, limit int) int {
	if limit > 0 && page > math.MaxInt/limit {
		return math.MaxInt
	}
	return max(pool, page*limit)
}

func uniqueSources(types []domain.Source) []domain.Source {
	if len(types) == 0 {
		return domain.AllSources
	}
	seen := make(map[domain.Source]struct{}, len(types))
	out := make([]domain.Source, 0, len(types))
	for _, t := range types {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
