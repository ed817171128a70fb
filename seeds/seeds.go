package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	numUsers   = 30
	numReviews = 260
	numReading = 160
	numShelf   = 120
	maxFollows = 6
)

type bookSeed struct {
	title  string
	author string
}

var catalog = []bookSeed{
	{"Dune", "Frank Herbert"}, {"Neuromancer", "William Gibson"},
	{"The Left Hand of Darkness", "Ursula K. Le Guin"}, {"Foundation", "Isaac Asimov"},
	{"Hyperion", "Dan Simmons"}, {"The Dispossessed", "Ursula K. Le Guin"},
	{"Snow Crash", "Neal Stephenson"}, {"Kindred", "Octavia E. Butler"},
	{"The Three-Body Problem", "Liu Cixin"}, {"Solaris", "Stanislaw Lem"},
	{"Pride and Prejudice", "Jane Austen"}, {"Middlemarch", "George Eliot"},
	{"Jane Eyre", "Charlotte Bronte"}, {"Wuthering Heights", "Emily Bronte"},
	{"Anna Karenina", "Leo Tolstoy"}, {"Crime and Punishment", "Fyodor Dostoevsky"},
	{"Moby-Dick", "Herman Melville"}, {"Great Expectations", "Charles Dickens"},
	{"The Remains of the Day", "Kazuo Ishiguro"}, {"Beloved", "Toni Morrison"},
	{"The Name of the Rose", "Umberto Eco"}, {"Gone Girl", "Gillian Flynn"},
	{"The Big Sleep", "Raymond Chandler"}, {"Rebecca", "Daphne du Maurier"},
	{"The Secret History", "Donna Tartt"}, {"In Cold Blood", "Truman Capote"},
	{"The Hobbit", "J.R.R. Tolkien"}, {"A Wizard of Earthsea", "Ursula K. Le Guin"},
	{"The Name of the Wind", "Patrick Rothfuss"}, {"Piranesi", "Susanna Clarke"},
	{"Jonathan Strange & Mr Norrell", "Susanna Clarke"}, {"The Fifth Season", "N.K. Jemisin"},
	{"Sapiens", "Yuval Noah Harari"}, {"The Gene", "Siddhartha Mukherjee"},
	{"Thinking, Fast and Slow", "Daniel Kahneman"}, {"The Structure of Scientific Revolutions", "Thomas S. Kuhn"},
	{"Gödel, Escher, Bach", "Douglas Hofstadter"}, {"The Selfish Gene", "Richard Dawkins"},
	{"Educated", "Tara Westover"}, {"H is for Hawk", "Helen Macdonald"},
}

var displayNames = []string{
	"Ada", "Bea", "Cyril", "Dara", "Eli", "Farah", "Gus", "Hana", "Ivo", "Juno",
}

// Setup replaces all feed tables with deterministic sample data.
func Setup(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	logger = logger.With().Str("component", "seed").Logger()
	rng := rand.New(rand.NewSource(42))
	now := time.Now()

	// Truncate existing data before insert
	logger.Info().Msg("truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE activities, follows, shelf_items, reading_status, reviews, books, users RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"users", func() error { return seedUsers(ctx, pool, rng, now) }},
		{"books", func() error { return seedBooks(ctx, pool, rng, now) }},
		{"reviews", func() error { return seedReviews(ctx, pool, rng, now) }},
		{"reading status", func() error { return seedReading(ctx, pool, rng, now) }},
		{"shelf items", func() error { return seedShelf(ctx, pool, rng, now) }},
		{"follows", func() error { return seedFollows(ctx, pool, rng, now) }},
		{"activities", func() error { return seedActivities(ctx, pool) }},
		{"book ratings", func() error { return refreshRatings(ctx, pool) }},
	}
	for _, s := range steps {
		logger.Info().Msgf("inserting %s", s.name)
		if err := s.fn(); err != nil {
			return fmt.Errorf("seed %s: %w", s.name, err)
		}
	}

	logger.Info().Msg("seeding complete")
	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, now time.Time) error {
	rows := make([][]any, 0, numUsers)
	for i := range numUsers {
		name := fmt.Sprintf("%s %d", displayNames[i%len(displayNames)], i/len(displayNames)+1)
		createdAt := now.AddDate(0, 0, -rng.Intn(365))
		rows = append(rows, []any{fmt.Sprintf("reader%02d", i+1), name, createdAt})
	}
	return insertRows(ctx, pool, "users", []string{"username", "display_name", "created_at"}, rows)
}

func seedBooks(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, now time.Time) error {
	rows := make([][]any, 0, len(catalog))
	for i, b := range catalog {
		externalID := fmt.Sprintf("OL%dW", 10000+i*37)
		cover := fmt.Sprintf("https://covers.example.org/b/olid/%s-M.jpg", externalID)
		updatedAt := now.AddDate(0, 0, -rng.Intn(730))
		rows = append(rows, []any{externalID, b.title, []string{b.author}, cover, updatedAt})
	}
	return insertRows(ctx, pool, "books",
		[]string{"external_id", "title", "authors", "cover_url", "updated_at"}, rows)
}

func seedReviews(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, now time.Time) error {
	ratings := []float64{1, 2, 3, 4, 5}
	weights := []float64{0.05, 0.1, 0.25, 0.35, 0.25}

	seen := make(map[[2]int64]bool)
	rows := [][]any{}
	for range numReviews {
		key := [2]int64{skewedID(rng, numUsers, 1.5), skewedID(rng, len(catalog), 1.3)}
		if seen[key] {
			continue
		}
		seen[key] = true

		rating := weightedChoice(rng, ratings, weights)
		rows = append(rows, []any{key[0], key[1], rating, recentTime(rng, now, 180)})
	}
	return insertRows(ctx, pool, "reviews", []string{"user_id", "book_id", "rating", "created_at"}, rows)
}

func seedReading(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, now time.Time) error {
	statuses := []string{"want", "reading", "finished"}
	weights := []float64{0.3, 0.3, 0.4}

	seen := make(map[[2]int64]bool)
	rows := [][]any{}
	for range numReading {
		key := [2]int64{skewedID(rng, numUsers, 1.5), skewedID(rng, len(catalog), 1.2)}
		if seen[key] {
			continue
		}
		seen[key] = true

		status := weightedChoice(rng, statuses, weights)
		updatedAt := recentTime(rng, now, 120)
		var startedAt *time.Time
		if status != "want" {
			s := updatedAt
			if status == "finished" {
				s = updatedAt.AddDate(0, 0, -rng.Intn(30)-1)
			}
			startedAt = &s
		}
		rows = append(rows, []any{key[0], key[1], status, startedAt, updatedAt})
	}
	return insertRows(ctx, pool, "reading_status",
		[]string{"user_id", "book_id", "status", "started_at", "updated_at"}, rows)
}

func seedShelf(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, now time.Time) error {
	seen := make(map[[2]int64]bool)
	rows := [][]any{}
	for range numShelf {
		key := [2]int64{skewedID(rng, numUsers, 1.4), skewedID(rng, len(catalog), 1.1)}
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, []any{key[0], key[1], recentTime(rng, now, 90)})
	}
	return insertRows(ctx, pool, "shelf_items", []string{"user_id", "book_id", "created_at"}, rows)
}

func seedFollows(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, now time.Time) error {
	rows := [][]any{}
	for follower := int64(1); follower <= numUsers; follower++ {
		seen := map[int64]bool{follower: true}
		for range rng.Intn(maxFollows + 1) {
			followee := skewedID(rng, numUsers, 1.8)
			if seen[followee] {
				continue
			}
			seen[followee] = true
			rows = append(rows, []any{follower, followee, recentTime(rng, now, 365)})
		}
	}
	return insertRows(ctx, pool, "follows", []string{"follower_id", "followee_id", "created_at"}, rows)
}

// seedActivities derives the activity log from the interaction tables.
func seedActivities(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO activities (actor_id, type, action, book_id, rating, created_at)
		SELECT user_id, 'review', 'created', book_id, rating, created_at FROM reviews
		UNION ALL
		SELECT user_id, 'reading',
			CASE status WHEN 'finished' THEN 'finished' ELSE 'started' END,
			book_id, NULL, updated_at
		FROM reading_status WHERE status IN ('reading', 'finished')
		UNION ALL
		SELECT user_id, 'shelf', 'added', book_id, NULL, created_at FROM shelf_items
	`)
	return err
}

func refreshRatings(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		UPDATE books b
		SET avg_rating = s.avg_rating, ratings_count = s.ratings_count
		FROM (
			SELECT book_id, ROUND(AVG(rating)::numeric, 2)::float8 AS avg_rating, COUNT(*) AS ratings_count
			FROM reviews GROUP BY book_id
		) s
		WHERE b.id = s.book_id
	`)
	return err
}

// insertRows issues one multi-row INSERT.
func insertRows(ctx context.Context, pool *pgxpool.Pool, table string, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*len(cols))
	for _, row := range rows {
		placeholders := make([]string, len(row))
		for i := range row {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+i+1)
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
		args = append(args, row...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(cols, ", "), strings.Join(values, ", "))

	_, err := pool.Exec(ctx, query, args...)
	return err
}

// skewedID picks an id in [1, n], biased toward low ids.
func skewedID(rng *rand.Rand, n int, exp float64) int64 {
	id := int64(math.Ceil(math.Pow(rng.Float64(), exp) * float64(n)))
	return max(1, min(id, int64(n)))
}

// recentTime is biased toward now so the trending window has data.
func recentTime(rng *rand.Rand, now time.Time, days int) time.Time {
	ago := math.Pow(rng.Float64(), 2.0) * float64(days) * 24
	return now.Add(-time.Duration(ago * float64(time.Hour)))
}

func weightedChoice[T any](rng *rand.Rand, choices []T, weights []float64) T {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}
