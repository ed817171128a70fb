package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (r *Repository) queryBooks(ctx context.Context, what, query string, args ...any) ([]domain.BookRef, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	books, err := pgx.CollectRows(rows, scanBook)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", what, err)
	}
	return books, nil
}

func (r *Repository) FindBooksByID(ctx context.Context, ids []int64) ([]domain.BookRef, error) {
	return r.queryBooks(ctx, "books by id",
		`SELECT `+bookColumns+` FROM books b WHERE b.id = ANY($1) ORDER BY b.id`, nonNil(ids))
}

// FindTopRatedBooks orders by average rating; unrated books come last.
func (r *Repository) FindTopRatedBooks(ctx context.Context, limit int) ([]domain.BookRef, error) {
	return r.queryBooks(ctx, "top rated books",
		`SELECT `+bookColumns+` FROM books b
		ORDER BY b.avg_rating DESC NULLS LAST, b.ratings_count DESC, b.id
		LIMIT $1`, limit)
}

func (r *Repository) FindMostRatedBooks(ctx context.Context, limit int) ([]domain.BookRef, error) {
	return r.queryBooks(ctx, "most rated books",
		`SELECT `+bookColumns+` FROM books b
		ORDER BY b.ratings_count DESC, b.avg_rating DESC NULLS LAST, b.id
		LIMIT $1`, limit)
}

func (r *Repository) FindBooksExcluding(ctx context.Context, exclude []int64, limit int) ([]domain.BookRef, error) {
	return r.queryBooks(ctx, "unseen books",
		`SELECT `+bookColumns+` FROM books b
		WHERE NOT (b.id = ANY($1))
		ORDER BY b.ratings_count DESC, b.avg_rating DESC NULLS LAST, b.id
		LIMIT $2`, nonNil(exclude), limit)
}
