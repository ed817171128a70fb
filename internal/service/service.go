package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const defaultBatchConcurrency = 10

type UserStore interface {
	EnsureUser(ctx context.Context, userID int64) error
	GetUserIDsPaginated(ctx context.Context, page, limit int) ([]int64, error)
	CountUsers(ctx context.Context) (int, error)
}

type FeedComposer interface {
	ComposeFeed(ctx context.Context, userID int64, opts domain.FeedOptions) (*domain.FeedResponse, error)
	UnreadCount(ctx context.Context, userID int64, types []domain.Source, since time.Time) (int, error)
}

type Service struct {
	users            UserStore
	composer         FeedComposer
	batchConcurrency int
	logger           zerolog.Logger
}

func NewService(users UserStore, composer FeedComposer, batchConcurrency int, logger zerolog.Logger) *Service {
	if batchConcurrency <= 0 {
		batchConcurrency = defaultBatchConcurrency
	}
	return &Service{
		users:            users,
		composer:         composer,
		batchConcurrency: batchConcurrency,
		logger:           logger.With().Str("component", "service").Logger(),
	}
}

// GetFeed returns one page of the user's feed. Unknown users get
// domain.ErrUserNotFound rather than a generic fallback feed.
func (s *Service) GetFeed(ctx context.Context, userID int64, opts domain.FeedOptions) (*domain.FeedResponse, error) {
	if err := s.users.EnsureUser(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	return s.composer.ComposeFeed(ctx, userID, opts)
}

func (s *Service) GetUnreadCount(ctx context.Context, userID int64, types []domain.Source, since time.Time) (int, error) {
	if err := s.users.EnsureUser(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("fetch user: %w", err)
	}
	return s.composer.UnreadCount(ctx, userID, types, since)
}

// GetBatchFeeds composes opts.Feed for every user on one page of users.
func (s *Service) GetBatchFeeds(ctx context.Context, opts domain.BatchOptions) (*domain.BatchResponse, error) {
	start := time.Now()

	userIDs, err := s.users.GetUserIDsPaginated(ctx, opts.Page, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch user ids: %w", err)
	}

	totalUsers, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	// Bounded worker pool; per-user failures are captured in the result.
	results := make([]domain.BatchUserResult, len(userIDs))
	var g errgroup.Group
	g.SetLimit(s.batchConcurrency)
	for i, userID := range userIDs {
		g.Go(func() error {
			results[i] = s.processUserForBatch(ctx, userID, opts.Feed)
			return nil
		})
	}
	_ = g.Wait()

	successCount := 0
	failedCount := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successCount++
		} else {
			failedCount++
		}
	}

	return &domain.BatchResponse{
		Page:       opts.Page,
		Limit:      opts.Limit,
		FeedLimit:  opts.Feed.Limit,
		TotalUsers: totalUsers,
		Results:    results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			FailedCount:      failedCount,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
		Metadata: domain.BatchMeta{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

func (s *Service) processUserForBatch(ctx context.Context, userID int64, feed domain.FeedOptions) domain.BatchUserResult {
	resp, err := s.composer.ComposeFeed(ctx, userID, feed)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("batch: feed failed")
		code, msg := categorizeError(err)
		return domain.BatchUserResult{
			UserID:  userID,
			Status:  domain.StatusFailed,
			Error:   code,
			Message: msg,
		}
	}

	return domain.BatchUserResult{
		UserID: userID,
		Items:  resp.Items,
		Total:  resp.Total,
		Status: domain.StatusSuccess,
	}
}

func categorizeError(err error) (string, string) {
	if errors.Is(err, domain.ErrUserNotFound) {
		return "user_not_found", "user not found"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "request_timeout", "feed composition timed out"
	}
	return "internal_error", "an unexpected error occurred"
}
