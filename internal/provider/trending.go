package provider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
	"github.com/actuallystonmai/bookfeed-service/internal/scoring"
	"github.com/rs/zerolog"
)

const defaultTrendingWindowDays = 7

// Trending surfaces books with the most recent review and reading-start
// volume inside a trailing window.
type Trending struct {
	interactions InteractionStore
	catalog      CatalogStore
	windowDays   int
	logger       zerolog.Logger
	now          func() time.Time
}

func NewTrending(interactions InteractionStore, catalog CatalogStore, windowDays int, logger zerolog.Logger) *Trending {
	if windowDays <= 0 {
		windowDays = defaultTrendingWindowDays
	}
	return &Trending{
		interactions: interactions,
		catalog:      catalog,
		windowDays:   windowDays,
		logger:       logger.With().Str("component", "provider.trending").Logger(),
		now:          time.Now,
	}
}

type trendAgg struct {
	book    domain.BookRef
	reviews int
	starts  int
	last    time.Time
}

// TrendingBooks only considers books with at least one signal inside the
// window. When nothing qualifies it serves the most rated books with
// Fallback set and a zero score.
func (t *Trending) TrendingBooks(ctx context.Context, limit, windowDays int) ([]TrendingBook, error) {
	if windowDays <= 0 {
		windowDays = t.windowDays
	}
	since := t.now().AddDate(0, 0, -windowDays)

	reviews, err := t.interactions.FindReviewsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fetch recent reviews: %w", err)
	}
	starts, err := t.interactions.FindReadingStartsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fetch recent reading starts: %w", err)
	}

	agg := make(map[string]*trendAgg)
	touch := func(book domain.BookRef, at time.Time) *trendAgg {
		key := book.IdentityKey()
		a, ok := agg[key]
		if !ok {
			a = &trendAgg{book: book}
			agg[key] = a
		}
		if at.After(a.last) {
			a.last = at
		}
		return a
	}

	for _, r := range reviews {
		if !r.CreatedAt.After(since) {
			continue
		}
		touch(r.Book, r.CreatedAt).reviews++
	}
	for _, s := range starts {
		if !s.UpdatedAt.After(since) {
			continue
		}
		touch(s.Book, s.UpdatedAt).starts++
	}

	if len(agg) == 0 {
		t.logger.Debug().Int("window_days", windowDays).Msg("no signal in window, serving most rated books")
		return t.fallback(ctx, limit)
	}

	keys := make([]string, 0, len(agg))
	for k := range agg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	reviewCounts := make([]float64, len(keys))
	startCounts := make([]float64, len(keys))
	for i, k := range keys {
		reviewCounts[i] = float64(agg[k].reviews)
		startCounts[i] = float64(agg[k].starts)
	}
	normReviews := scoring.MinMax(reviewCounts)
	normStarts := scoring.MinMax(startCounts)

	books := make([]TrendingBook, 0, len(keys))
	for i, k := range keys {
		a := agg[k]
		books = append(books, TrendingBook{
			Book:          a.book,
			TrendingScore: scoring.Round3(scoring.Trending(normReviews[i], normStarts[i])),
			RecentReviews: a.reviews,
			RecentStarts:  a.starts,
			LastSignalAt:  a.last,
			Reason:        ReasonTrending,
		})
	}

	sort.SliceStable(books, func(i, j int) bool {
		if books[i].TrendingScore != books[j].TrendingScore {
			return books[i].TrendingScore > books[j].TrendingScore
		}
		return books[i].LastSignalAt.After(books[j].LastSignalAt)
	})
	return truncate(books, limit), nil
}

func (t *Trending) fallback(ctx context.Context, limit int) ([]TrendingBook, error) {
	popular, err := t.catalog.FindMostRatedBooks(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch most rated books: %w", err)
	}
	books := make([]TrendingBook, 0, len(popular))
	for _, b := range popular {
		books = append(books, TrendingBook{
			Book:          b,
			TrendingScore: 0,
			Fallback:      true,
			Reason:        ReasonTrendingPopular,
		})
	}
	return truncate(books, limit), nil
}
