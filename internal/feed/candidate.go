package feed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
	"github.com/actuallystonmai/bookfeed-service/internal/provider"
)

// ProviderCandidate is the closed set of provider outputs: Personal,
// Trending or Following. Normalize turns any of them into a domain.Candidate.
type ProviderCandidate interface {
	source() domain.Source
}

type Personal struct{ provider.PersonalPick }

type Trending struct{ provider.TrendingBook }

type Following struct{ provider.FollowedUpdate }

func (Personal) source() domain.Source  { return domain.SourcePersonal }
func (Trending) source() domain.Source  { return domain.SourceTrending }
func (Following) source() domain.Source { return domain.SourceFollowing }

// entry is a normalized candidate plus its presentation text and rank.
type entry struct {
	cand     domain.Candidate
	key      string
	friendly string
	rank     float64
}

func normalize(pc ProviderCandidate, now time.Time) entry {
	var e entry
	switch v := pc.(type) {
	case Personal:
		e = normalizePersonal(v, now)
	case Trending:
		e = normalizeTrending(v, now)
	case Following:
		e = normalizeFollowing(v, now)
	default:
		panic(fmt.Sprintf("feed: unknown provider candidate %T", pc))
	}
	e.key = e.cand.Book.IdentityKey()
	return e
}

func normalizePersonal(p Personal, now time.Time) entry {
	return entry{
		cand: domain.Candidate{
			Book:      p.Book,
			Score:     p.Score,
			Reason:    p.Reason,
			CreatedAt: resolveCreatedAt(p.LastSignalAt, p.Book, now),
			Source:    domain.SourcePersonal,
			Fallback:  p.Fallback,
		},
		friendly: friendlyReason(domain.SourcePersonal, p.Reason),
	}
}

func normalizeTrending(t Trending, now time.Time) entry {
	return entry{
		cand: domain.Candidate{
			Book:      t.Book,
			Score:     t.TrendingScore,
			Reason:    t.Reason,
			CreatedAt: resolveCreatedAt(t.LastSignalAt, t.Book, now),
			Source:    domain.SourceTrending,
			Fallback:  t.Fallback,
		},
		friendly: friendlyReason(domain.SourceTrending, t.Reason),
	}
}

func normalizeFollowing(f Following, now time.Time) entry {
	var book domain.BookRef
	if f.Activity.Book != nil {
		book = *f.Activity.Book
	}
	friendly := strings.TrimSpace(f.Activity.Message)
	if friendly == "" {
		friendly = activitySentence(f.Activity)
	}
	if friendly == "" {
		friendly = friendlyReason(domain.SourceFollowing, f.Reason)
	}
	return entry{
		cand: domain.Candidate{
			Book:      book,
			Score:     f.Score,
			Reason:    f.Reason,
			CreatedAt: resolveCreatedAt(f.Activity.CreatedAt, book, now),
			Source:    domain.SourceFollowing,
		},
		friendly: friendly,
	}
}

// resolveCreatedAt prefers the explicit activity time, then the book's
// last update, then now.
func resolveCreatedAt(explicit time.Time, book domain.BookRef, now time.Time) time.Time {
	if !explicit.IsZero() {
		return explicit
	}
	if !book.UpdatedAt.IsZero() {
		return book.UpdatedAt
	}
	return now
}

func friendlyReason(src domain.Source, code string) string {
	switch {
	case strings.HasPrefix(code, provider.ReasonCoOccurPrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(code, provider.ReasonCoOccurPrefix))
		if err == nil {
			return fmt.Sprintf("Because similar readers liked it (%d)", n)
		}
	case code == provider.ReasonPopularFallback,
		code == provider.ReasonFallbackPopular,
		code == provider.ReasonTrendingPopular:
		return "Popular with readers"
	}

	switch src {
	case domain.SourceTrending:
		return "Trending now"
	case domain.SourceFollowing:
		return "From people you follow"
	}
	return "Recommended for you"
}

func activitySentence(a domain.Activity) string {
	name := strings.TrimSpace(a.ActorName)
	if name == "" {
		return ""
	}
	switch a.Type {
	case domain.ActivityReview:
		return name + " reviewed this"
	case domain.ActivityReading:
		if a.Action == domain.ActionFinished {
			return name + " finished reading this"
		}
		return name + " started reading this"
	case domain.ActivityShelf:
		return name + " shelved this"
	}
	return ""
}
