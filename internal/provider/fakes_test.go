package provider

import (
	"context"
	"slices"
	"time"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
)

// fakeStore implements every store interface over in-memory slices.
type fakeStore struct {
	reviews   []domain.Review
	reading   []domain.ReadingEntry
	shelf     []domain.ShelfItem
	books     []domain.BookRef
	following map[int64][]int64
	activity  []domain.Activity

	err         error
	activityQry domain.ActivityQuery
}

func (f *fakeStore) FindReviewsByUser(_ context.Context, userID int64) ([]domain.Review, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Review
	for _, r := range f.reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) FindReadingByUser(_ context.Context, userID int64) ([]domain.ReadingEntry, error) {
	var out []domain.ReadingEntry
	for _, r := range f.reading {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) FindShelfItemsByUser(_ context.Context, userID int64) ([]domain.ShelfItem, error) {
	var out []domain.ShelfItem
	for _, s := range f.shelf {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) FindReviewsForBooks(_ context.Context, bookIDs []int64, since time.Time) ([]domain.Review, error) {
	var out []domain.Review
	for _, r := range f.reviews {
		if slices.Contains(bookIDs, r.Book.ID) && r.CreatedAt.After(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) FindReviewsByUsers(_ context.Context, userIDs []int64, since time.Time) ([]domain.Review, error) {
	var out []domain.Review
	for _, r := range f.reviews {
		if slices.Contains(userIDs, r.UserID) && r.CreatedAt.After(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) FindReadingByUsers(_ context.Context, userIDs []int64, since time.Time) ([]domain.ReadingEntry, error) {
	var out []domain.ReadingEntry
	for _, r := range f.reading {
		if slices.Contains(userIDs, r.UserID) && r.UpdatedAt.After(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

// FindReviewsSince deliberately ignores since so the provider's own window
// filter is exercised.
func (f *fakeStore) FindReviewsSince(_ context.Context, _ time.Time) ([]domain.Review, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.reviews, nil
}

func (f *fakeStore) FindReadingStartsSince(_ context.Context, _ time.Time) ([]domain.ReadingEntry, error) {
	var out []domain.ReadingEntry
	for _, r := range f.reading {
		if r.Status == domain.ReadingStatusReading {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) FindFollowing(_ context.Context, userID int64) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.following[userID], nil
}

func (f *fakeStore) FindRecentActivity(_ context.Context, q domain.ActivityQuery) ([]domain.Activity, error) {
	f.activityQry = q
	var out []domain.Activity
	for _, a := range f.activity {
		if slices.Contains(q.ActorIDs, a.ActorID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) FindBooksByID(_ context.Context, ids []int64) ([]domain.BookRef, error) {
	var out []domain.BookRef
	for _, b := range f.books {
		if slices.Contains(ids, b.ID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) FindTopRatedBooks(_ context.Context, limit int) ([]domain.BookRef, error) {
	out := slices.Clone(f.books)
	slices.SortStableFunc(out, func(a, b domain.BookRef) int {
		switch {
		case a.Rating() > b.Rating():
			return -1
		case a.Rating() < b.Rating():
			return 1
		}
		return 0
	})
	return truncate(out, limit), nil
}

func (f *fakeStore) FindMostRatedBooks(_ context.Context, limit int) ([]domain.BookRef, error) {
	out := slices.Clone(f.books)
	slices.SortStableFunc(out, func(a, b domain.BookRef) int {
		return b.RatingsCount - a.RatingsCount
	})
	return truncate(out, limit), nil
}

func (f *fakeStore) FindBooksExcluding(_ context.Context, exclude []int64, limit int) ([]domain.BookRef, error) {
	var out []domain.BookRef
	for _, b := range f.books {
		if !slices.Contains(exclude, b.ID) {
			out = append(out, b)
		}
	}
	return truncate(out, limit), nil
}

func rating(v float64) *float64 { return &v }

func book(id int64, title string, avg float64) domain.BookRef {
	return domain.BookRef{ID: id, Title: title, Authors: []string{"Author " + title}, AvgRating: rating(avg)}
}
