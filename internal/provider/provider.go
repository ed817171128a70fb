// Package provider produces feed candidates from three independent sources:
// collaborative "personalized" picks, windowed "trending" books and recent
// activity of followed accounts. Providers only read; every store they
// consume is a read interface implemented by the repository package.
package provider

import (
	"context"
	"time"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
)

// InteractionStore reads a user's historical signals.
type InteractionStore interface {
	FindReviewsByUser(ctx context.Context, userID int64) ([]domain.Review, error)
	FindReadingByUser(ctx context.Context, userID int64) ([]domain.ReadingEntry, error)
	FindShelfItemsByUser(ctx context.Context, userID int64) ([]domain.ShelfItem, error)

	// FindReviewsForBooks returns reviews of any of bookIDs created after since.
	FindReviewsForBooks(ctx context.Context, bookIDs []int64, since time.Time) ([]domain.Review, error)
	FindReviewsByUsers(ctx context.Context, userIDs []int64, since time.Time) ([]domain.Review, error)
	FindReadingByUsers(ctx context.Context, userIDs []int64, since time.Time) ([]domain.ReadingEntry, error)

	FindReviewsSince(ctx context.Context, since time.Time) ([]domain.Review, error)
	// FindReadingStartsSince returns entries that moved to "reading" after since.
	FindReadingStartsSince(ctx context.Context, since time.Time) ([]domain.ReadingEntry, error)
}

type SocialGraphStore interface {
	FindFollowing(ctx context.Context, userID int64) ([]int64, error)
}

type ActivityStore interface {
	FindRecentActivity(ctx context.Context, q domain.ActivityQuery) ([]domain.Activity, error)
}

type CatalogStore interface {
	FindBooksByID(ctx context.Context, ids []int64) ([]domain.BookRef, error)
	FindTopRatedBooks(ctx context.Context, limit int) ([]domain.BookRef, error)
	// FindMostRatedBooks orders by total rating volume.
	FindMostRatedBooks(ctx context.Context, limit int) ([]domain.BookRef, error)
	FindBooksExcluding(ctx context.Context, exclude []int64, limit int) ([]domain.BookRef, error)
}

// Reason codes emitted by the providers.
const (
	ReasonPopularFallback = "popular_fallback"
	ReasonFallbackPopular = "fallback_popular"
	ReasonCoOccurPrefix   = "cf_cooccur:"
	ReasonTrending        = "trending_window"
	ReasonTrendingPopular = "trending_fallback"
	ReasonFollowingPrefix = "following:"
)

// PersonalPick is one result of the personalized provider.
type PersonalPick struct {
	Book         domain.BookRef `json:"book"`
	Score        float64        `json:"score"`
	Reason       string         `json:"reason"`
	LastSignalAt time.Time      `json:"last_signal_at,omitempty"`
	Fallback     bool           `json:"fallback,omitempty"`
}

// TrendingBook is one result of the trending provider.
type TrendingBook struct {
	Book          domain.BookRef `json:"book"`
	TrendingScore float64        `json:"trending_score"`
	RecentReviews int            `json:"recent_reviews"`
	RecentStarts  int            `json:"recent_starts"`
	LastSignalAt  time.Time      `json:"last_signal_at,omitempty"`
	Fallback      bool           `json:"fallback"`
	Reason        string         `json:"reason"`
}

// FollowedUpdate is one activity of a followed account that concerns a book.
type FollowedUpdate struct {
	Activity domain.Activity `json:"activity"`
	Score    float64         `json:"score"`
	Reason   string          `json:"reason"`
}

func ids(books []domain.BookRef) []int64 {
	out := make([]int64, 0, len(books))
	for _, b := range books {
		if b.ID > 0 {
			out = append(out, b.ID)
		}
	}
	return out
}

func truncate[T any](items []T, limit int) []T {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
