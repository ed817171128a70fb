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

type PersonalizedConfig struct {
	// SimilarityWindow bounds how far back co-occurring signals are read.
	SimilarityWindow time.Duration
	// RecencyHorizon is where the recency sub-term reaches zero.
	RecencyHorizon    time.Duration
	SeedLimit         int
	SimilarUsersLimit int
	FallbackScore     float64
	ReviewWeight      float64
	ReadingWeight     float64
}

func DefaultPersonalizedConfig() PersonalizedConfig {
	return PersonalizedConfig{
		SimilarityWindow:  180 * 24 * time.Hour,
		RecencyHorizon:    90 * 24 * time.Hour,
		SeedLimit:         20,
		SimilarUsersLimit: 50,
		FallbackScore:     0.1,
		ReviewWeight:      1.0,
		ReadingWeight:     0.6,
	}
}

// Personalized is a collaborative-filtering heuristic: readers who touched
// the same books as the user vote for what they read next.
type Personalized struct {
	interactions InteractionStore
	catalog      CatalogStore
	cfg          PersonalizedConfig
	logger       zerolog.Logger
	now          func() time.Time
}

func NewPersonalized(interactions InteractionStore, catalog CatalogStore, cfg PersonalizedConfig, logger zerolog.Logger) *Personalized {
	return &Personalized{
		interactions: interactions,
		catalog:      catalog,
		cfg:          cfg,
		logger:       logger.With().Str("component", "provider.personalized").Logger(),
		now:          time.Now,
	}
}

type seed struct {
	book domain.BookRef
	at   time.Time
}

type poolEntry struct {
	book      domain.BookRef
	weight    float64
	signals   int
	ratingSum float64
	ratings   int
	last      time.Time
}

// PersonalizedPicks never returns an empty slice for a user without history
// as long as the catalog has books.
func (p *Personalized) PersonalizedPicks(ctx context.Context, userID int64, limit int) ([]PersonalPick, error) {
	seeds, err := p.collectSeeds(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(seeds) == 0 {
		p.logger.Debug().Int64("user_id", userID).Msg("cold start, serving top rated books")
		return p.coldStart(ctx, limit)
	}

	now := p.now()
	since := now.Add(-p.cfg.SimilarityWindow)

	seedKeys := make(map[string]struct{}, len(seeds))
	seedBooks := make([]domain.BookRef, 0, len(seeds))
	for _, s := range seeds {
		seedKeys[s.book.IdentityKey()] = struct{}{}
		seedBooks = append(seedBooks, s.book)
	}

	probe := seedBooks
	if len(probe) > p.cfg.SeedLimit {
		probe = probe[:p.cfg.SeedLimit]
	}

	similar, err := p.similarUsers(ctx, userID, ids(probe), since)
	if err != nil {
		return nil, err
	}

	picks, err := p.candidatePool(ctx, similar, seedKeys, since, now)
	if err != nil {
		return nil, err
	}

	if len(picks) == 0 {
		p.logger.Debug().
			Int64("user_id", userID).
			Int("similar_users", len(similar)).
			Msg("empty candidate pool, serving unseen catalog books")
		return p.unseenFallback(ctx, ids(seedBooks), limit)
	}

	sortPicks(picks)
	return truncate(picks, limit), nil
}

// collectSeeds returns the user's interacted books, most recent first, one
// per identity key.
func (p *Personalized) collectSeeds(ctx context.Context, userID int64) ([]seed, error) {
	reviews, err := p.interactions.FindReviewsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch reviews for user %d: %w", userID, err)
	}
	reading, err := p.interactions.FindReadingByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch reading entries for user %d: %w", userID, err)
	}
	shelf, err := p.interactions.FindShelfItemsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch shelf items for user %d: %w", userID, err)
	}

	all := make([]seed, 0, len(reviews)+len(reading)+len(shelf))
	for _, r := range reviews {
		all = append(all, seed{book: r.Book, at: r.CreatedAt})
	}
	for _, r := range reading {
		all = append(all, seed{book: r.Book, at: r.UpdatedAt})
	}
	for _, s := range shelf {
		all = append(all, seed{book: s.Book, at: s.CreatedAt})
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].at.After(all[j].at)
	})

	seen := make(map[string]struct{}, len(all))
	out := all[:0]
	for _, s := range all {
		key := s.book.IdentityKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

// similarUsers ranks other reviewers of the seed books by co-occurrence count.
func (p *Personalized) similarUsers(ctx context.Context, userID int64, seedIDs []int64, since time.Time) ([]int64, error) {
	if len(seedIDs) == 0 {
		return nil, nil
	}

	reviews, err := p.interactions.FindReviewsForBooks(ctx, seedIDs, since)
	if err != nil {
		return nil, fmt.Errorf("fetch co-reviewers: %w", err)
	}

	type pair struct {
		user int64
		book string
	}
	seenPair := make(map[pair]struct{})
	counts := make(map[int64]int)
	for _, r := range reviews {
		if r.UserID == userID || r.CreatedAt.Before(since) {
			continue
		}
		k := pair{user: r.UserID, book: r.Book.IdentityKey()}
		if _, ok := seenPair[k]; ok {
			continue
		}
		seenPair[k] = struct{}{}
		counts[r.UserID]++
	}

	users := make([]int64, 0, len(counts))
	for u := range counts {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if counts[users[i]] != counts[users[j]] {
			return counts[users[i]] > counts[users[j]]
		}
		return users[i] < users[j]
	})

	return truncate(users, p.cfg.SimilarUsersLimit), nil
}

func (p *Personalized) candidatePool(ctx context.Context, similar []int64, seedKeys map[string]struct{}, since, now time.Time) ([]PersonalPick, error) {
	if len(similar) == 0 {
		return nil, nil
	}

	reviews, err := p.interactions.FindReviewsByUsers(ctx, similar, since)
	if err != nil {
		return nil, fmt.Errorf("fetch similar users' reviews: %w", err)
	}
	reading, err := p.interactions.FindReadingByUsers(ctx, similar, since)
	if err != nil {
		return nil, fmt.Errorf("fetch similar users' reading: %w", err)
	}

	pool := make(map[string]*poolEntry)
	add := func(book domain.BookRef, weight float64, at time.Time) *poolEntry {
		key := book.IdentityKey()
		if _, isSeed := seedKeys[key]; isSeed {
			return nil
		}
		e, ok := pool[key]
		if !ok {
			e = &poolEntry{book: book}
			pool[key] = e
		}
		e.weight += weight
		e.signals++
		if at.After(e.last) {
			e.last = at
		}
		return e
	}

	for _, r := range reviews {
		if e := add(r.Book, p.cfg.ReviewWeight, r.CreatedAt); e != nil && r.Rating > 0 {
			e.ratingSum += r.Rating
			e.ratings++
		}
	}
	for _, r := range reading {
		add(r.Book, p.cfg.ReadingWeight, r.UpdatedAt)
	}

	keys := make([]string, 0, len(pool))
	for k := range pool {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	picks := make([]PersonalPick, 0, len(pool))
	for _, k := range keys {
		e := pool[k]
		rating := e.book.Rating()
		if e.ratings > 0 {
			rating = e.ratingSum / float64(e.ratings)
		}
		score := scoring.Personal(e.weight, rating, now.Sub(e.last), p.cfg.RecencyHorizon)
		picks = append(picks, PersonalPick{
			Book:         e.book,
			Score:        scoring.Round3(score),
			Reason:       fmt.Sprintf("%s%d", ReasonCoOccurPrefix, e.signals),
			LastSignalAt: e.last,
		})
	}
	return picks, nil
}

func (p *Personalized) coldStart(ctx context.Context, limit int) ([]PersonalPick, error) {
	books, err := p.catalog.FindTopRatedBooks(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch top rated books: %w", err)
	}
	sort.SliceStable(books, func(i, j int) bool {
		return books[i].Rating() > books[j].Rating()
	})
	return p.fallbackPicks(books, ReasonPopularFallback, limit), nil
}

func (p *Personalized) unseenFallback(ctx context.Context, seen []int64, limit int) ([]PersonalPick, error) {
	books, err := p.catalog.FindBooksExcluding(ctx, seen, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unseen books: %w", err)
	}
	return p.fallbackPicks(books, ReasonFallbackPopular, limit), nil
}

func (p *Personalized) fallbackPicks(books []domain.BookRef, reason string, limit int) []PersonalPick {
	picks := make([]PersonalPick, 0, len(books))
	for _, b := range books {
		picks = append(picks, PersonalPick{
			Book:     b,
			Score:    p.cfg.FallbackScore,
			Reason:   reason,
			Fallback: true,
		})
	}
	sortPicks(picks)
	return truncate(picks, limit)
}

// sortPicks orders by score, then by the most recent signal. Stable so
// fallback lists keep catalog order.
func sortPicks(picks []PersonalPick) {
	sort.SliceStable(picks, func(i, j int) bool {
		if picks[i].Score != picks[j].Score {
			return picks[i].Score > picks[j].Score
		}
		return picks[i].LastSignalAt.After(picks[j].LastSignalAt)
	})
}
