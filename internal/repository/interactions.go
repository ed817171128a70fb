package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
	"github.com/jackc/pgx/v5"
)

const reviewSelect = `SELECT r.user_id, r.rating, r.created_at, ` + bookColumns + `
	FROM reviews r
	JOIN books b ON b.id = r.book_id`

const readingSelect = `SELECT rs.user_id, rs.status, rs.updated_at, ` + bookColumns + `
	FROM reading_status rs
	JOIN books b ON b.id = rs.book_id`

func scanReview(row pgx.CollectableRow) (domain.Review, error) {
	var r domain.Review
	dest := append([]any{&r.UserID, &r.Rating, &r.CreatedAt}, bookDest(&r.Book)...)
	err := row.Scan(dest...)
	return r, err
}

func scanReading(row pgx.CollectableRow) (domain.ReadingEntry, error) {
	var r domain.ReadingEntry
	dest := append([]any{&r.UserID, &r.Status, &r.UpdatedAt}, bookDest(&r.Book)...)
	err := row.Scan(dest...)
	return r, err
}

func (r *Repository) queryReviews(ctx context.Context, what, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	reviews, err := pgx.CollectRows(rows, scanReview)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", what, err)
	}
	return reviews, nil
}

func (r *Repository) queryReading(ctx context.Context, what, query string, args ...any) ([]domain.ReadingEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	entries, err := pgx.CollectRows(rows, scanReading)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", what, err)
	}
	return entries, nil
}

func (r *Repository) FindReviewsByUser(ctx context.Context, userID int64) ([]domain.Review, error) {
	return r.queryReviews(ctx, fmt.Sprintf("reviews of user %d", userID),
		reviewSelect+` WHERE r.user_id = $1 ORDER BY r.created_at DESC`, userID)
}

func (r *Repository) FindReadingByUser(ctx context.Context, userID int64) ([]domain.ReadingEntry, error) {
	return r.queryReading(ctx, fmt.Sprintf("reading entries of user %d", userID),
		readingSelect+` WHERE rs.user_id = $1 ORDER BY rs.updated_at DESC`, userID)
}

func (r *Repository) FindShelfItemsByUser(ctx context.Context, userID int64) ([]domain.ShelfItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT si.user_id, si.created_at, `+bookColumns+`
		FROM shelf_items si
		JOIN books b ON b.id = si.book_id
		WHERE si.user_id = $1
		ORDER BY si.created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query shelf items of user %d: %w", userID, err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ShelfItem, error) {
		var s domain.ShelfItem
		dest := append([]any{&s.UserID, &s.CreatedAt}, bookDest(&s.Book)...)
		err := row.Scan(dest...)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan shelf items: %w", err)
	}
	return items, nil
}

func (r *Repository) FindReviewsForBooks(ctx context.Context, bookIDs []int64, since time.Time) ([]domain.Review, error) {
	return r.queryReviews(ctx, "reviews of seed books",
		reviewSelect+` WHERE r.book_id = ANY($1) AND r.created_at > $2`, nonNil(bookIDs), since)
}

func (r *Repository) FindReviewsByUsers(ctx context.Context, userIDs []int64, since time.Time) ([]domain.Review, error) {
	return r.queryReviews(ctx, "reviews of similar users",
		reviewSelect+` WHERE r.user_id = ANY($1) AND r.created_at > $2`, nonNil(userIDs), since)
}

func (r *Repository) FindReadingByUsers(ctx context.Context, userIDs []int64, since time.Time) ([]domain.ReadingEntry, error) {
	return r.queryReading(ctx, "reading entries of similar users",
		readingSelect+` WHERE rs.user_id = ANY($1) AND rs.updated_at > $2`, nonNil(userIDs), since)
}

func (r *Repository) FindReviewsSince(ctx context.Context, since time.Time) ([]domain.Review, error) {
	return r.queryReviews(ctx, "recent reviews",
		reviewSelect+` WHERE r.created_at > $1`, since)
}

// FindReadingStartsSince reports the start time as UpdatedAt.
func (r *Repository) FindReadingStartsSince(ctx context.Context, since time.Time) ([]domain.ReadingEntry, error) {
	return r.queryReading(ctx, "recent reading starts",
		`SELECT rs.user_id, rs.status, COALESCE(rs.started_at, rs.updated_at), `+bookColumns+`
		FROM reading_status rs
		JOIN books b ON b.id = rs.book_id
		WHERE rs.status = 'reading' AND COALESCE(rs.started_at, rs.updated_at) > $1`, since)
}
