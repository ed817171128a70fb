// Package repository implements the read-only store interfaces of the feed
// providers on PostgreSQL.
package repository

import (
	"github.com/actuallystonmai/bookfeed-service/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// bookColumns must stay in the order scanBookInto expects.
const bookColumns = `b.id, COALESCE(b.external_id, ''), b.title, b.authors,
	COALESCE(b.cover_url, ''), b.avg_rating, b.ratings_count, b.updated_at`

func bookDest(b *domain.BookRef) []any {
	return []any{&b.ID, &b.ExternalID, &b.Title, &b.Authors, &b.CoverURL, &b.AvgRating, &b.RatingsCount, &b.UpdatedAt}
}

func scanBook(row pgx.CollectableRow) (domain.BookRef, error) {
	var b domain.BookRef
	err := row.Scan(bookDest(&b)...)
	return b, err
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
