package provider

import (
	"context"
	"testing"
	"time"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTrending(store *fakeStore) *Trending {
	tr := NewTrending(store, store, 7, zerolog.Nop())
	tr.now = func() time.Time { return testNow }
	return tr
}

func TestTrendingBlendsNormalizedCounts(t *testing.T) {
	b1, b2, b3 := book(1, "one", 4), book(2, "two", 4), book(3, "three", 3)
	recent := testNow.Add(-24 * time.Hour)

	store := &fakeStore{
		reviews: []domain.Review{
			{UserID: 1, Book: b1, CreatedAt: recent},
			{UserID: 2, Book: b1, CreatedAt: recent},
			{UserID: 3, Book: b1, CreatedAt: recent},
			{UserID: 1, Book: b2, CreatedAt: recent},
		},
		reading: []domain.ReadingEntry{
			{UserID: 4, Book: b2, Status: domain.ReadingStatusReading, UpdatedAt: recent},
			{UserID: 5, Book: b2, Status: domain.ReadingStatusReading, UpdatedAt: recent},
			{UserID: 6, Book: b3, Status: domain.ReadingStatusReading, UpdatedAt: recent},
		},
	}

	books, err := newTestTrending(store).TrendingBooks(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, books, 3)

	// reviews: b1=3, b2=1, b3=0 -> 1, 1/3, 0
	// starts:  b1=0, b2=2, b3=1 -> 0, 1, 0.5
	assert.Equal(t, int64(1), books[0].Book.ID)
	assert.InDelta(t, 0.7, books[0].TrendingScore, 1e-3)
	assert.Equal(t, int64(2), books[1].Book.ID)
	assert.InDelta(t, 0.7/3+0.3, books[1].TrendingScore, 1e-3)
	assert.Equal(t, int64(3), books[2].Book.ID)
	assert.InDelta(t, 0.15, books[2].TrendingScore, 1e-3)

	for _, b := range books {
		assert.False(t, b.Fallback)
	}
}

func TestTrendingExcludesBooksWithoutRecentSignal(t *testing.T) {
	b1, b2 := book(1, "one", 4), book(2, "two", 5)
	b2.RatingsCount = 10_000

	store := &fakeStore{
		books: []domain.BookRef{b1, b2},
		reviews: []domain.Review{
			{UserID: 1, Book: b1, CreatedAt: testNow.Add(-time.Hour)},
			{UserID: 2, Book: b2, CreatedAt: testNow.AddDate(0, 0, -30)},
		},
	}

	books, err := newTestTrending(store).TrendingBooks(context.Background(), 10, 7)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, int64(1), books[0].Book.ID)
}

func TestTrendingFallback(t *testing.T) {
	b1, b2, b3 := book(1, "one", 4), book(2, "two", 4), book(3, "three", 3)
	b1.RatingsCount, b2.RatingsCount, b3.RatingsCount = 10, 300, 50

	store := &fakeStore{
		books: []domain.BookRef{b1, b2, b3},
		reviews: []domain.Review{
			{UserID: 1, Book: b1, CreatedAt: testNow.AddDate(0, -2, 0)},
		},
	}

	books, err := newTestTrending(store).TrendingBooks(context.Background(), 2, 7)
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, int64(2), books[0].Book.ID)
	assert.Equal(t, int64(3), books[1].Book.ID)
	for _, b := range books {
		assert.True(t, b.Fallback)
		assert.Equal(t, 0.0, b.TrendingScore)
	}
}

func TestTrendingIdenticalCountsDoNotDivideByZero(t *testing.T) {
	b1, b2 := book(1, "one", 4), book(2, "two", 4)
	store := &fakeStore{
		reviews: []domain.Review{
			{UserID: 1, Book: b1, CreatedAt: testNow.Add(-2 * time.Hour)},
			{UserID: 1, Book: b2, CreatedAt: testNow.Add(-time.Hour)},
		},
	}

	books, err := newTestTrending(store).TrendingBooks(context.Background(), 10, 7)
	require.NoError(t, err)
	require.Len(t, books, 2)
	for _, b := range books {
		assert.Equal(t, 0.0, b.TrendingScore)
	}
	// equal score: most recent signal first
	assert.Equal(t, int64(2), books[0].Book.ID)
}
