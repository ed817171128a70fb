package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (r *Repository) FindFollowing(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT followee_id FROM follows WHERE follower_id = $1 ORDER BY followee_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query following of user %d: %w", userID, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan followee ids: %w", err)
	}
	return ids, nil
}

func (r *Repository) FindRecentActivity(ctx context.Context, q domain.ActivityQuery) ([]domain.Activity, error) {
	types := make([]string, 0, len(q.Types))
	for _, t := range q.Types {
		types = append(types, string(t))
	}
	var limit any
	if q.Limit > 0 {
		limit = q.Limit
	}

	rows, err := r.pool.Query(ctx,
		`SELECT a.actor_id, COALESCE(u.display_name, u.username), a.type, a.action,
			COALESCE(a.rating, 0), a.created_at, COALESCE(a.message, ''),
			b.id, b.external_id, b.title, b.authors, b.cover_url, b.avg_rating, b.ratings_count, b.updated_at
		FROM activities a
		JOIN users u ON u.id = a.actor_id
		LEFT JOIN books b ON b.id = a.book_id
		WHERE a.actor_id = ANY($1)
			AND a.type = ANY($2)
			AND ($3::timestamptz IS NULL OR a.created_at > $3)
		ORDER BY a.created_at DESC
		LIMIT $4`,
		nonNil(q.ActorIDs), types, q.Since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent activity: %w", err)
	}

	acts, err := pgx.CollectRows(rows, scanActivity)
	if err != nil {
		return nil, fmt.Errorf("scan activity: %w", err)
	}
	return acts, nil
}

// scanActivity reads the left-joined book columns as nullable values.
func scanActivity(row pgx.CollectableRow) (domain.Activity, error) {
	var (
		a        domain.Activity
		bookID   *int64
		ext      *string
		title    *string
		authors  []string
		cover    *string
		avg      *float64
		count    *int
		updateAt *time.Time
	)
	err := row.Scan(&a.ActorID, &a.ActorName, &a.Type, &a.Action, &a.Rating, &a.CreatedAt, &a.Message,
		&bookID, &ext, &title, &authors, &cover, &avg, &count, &updateAt)
	if err != nil {
		return a, err
	}
	if bookID == nil {
		return a, nil
	}

	book := domain.BookRef{ID: *bookID, Authors: authors, AvgRating: avg}
	if ext != nil {
		book.ExternalID = *ext
	}
	if title != nil {
		book.Title = *title
	}
	if cover != nil {
		book.CoverURL = *cover
	}
	if count != nil {
		book.RatingsCount = *count
	}
	if updateAt != nil {
		book.UpdatedAt = *updateAt
	}
	a.Book = &book
	return a, nil
}
