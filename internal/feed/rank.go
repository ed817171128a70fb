package feed

import (
	"sort"
	"time"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
	"github.com/actuallystonmai/bookfeed-service/internal/scoring"
)

// rankedSet holds at most one entry per book identity key.
type rankedSet map[string]entry

// dedupe reduces entries to one per identity key. It is a sequential
// reduction and must see every entry before a winner is final.
func dedupe(entries []entry) rankedSet {
	set := make(rankedSet, len(entries))
	for _, e := range entries {
		current, ok := set[e.key]
		if !ok || prefer(e.cand, current.cand) {
			set[e.key] = e
		}
	}
	return set
}

// prefer reports whether incoming replaces current for the same book.
// A following candidate always beats a non-following one regardless of
// score; otherwise the strictly higher score wins.
func prefer(incoming, current domain.Candidate) bool {
	inFollowing := incoming.Source == domain.SourceFollowing
	curFollowing := current.Source == domain.SourceFollowing
	if inFollowing != curFollowing {
		return inFollowing
	}
	return incoming.Score > current.Score
}

// rank scores and orders the set: rank desc, then createdAt desc, then
// identity key so equal items have a stable order.
func rank(set rankedSet, now time.Time, halfLife time.Duration) []entry {
	out := make([]entry, 0, len(set))
	for _, e := range set {
		if e.cand.Fallback {
			e.rank = scoring.RankWithoutRecency(e.cand.Score)
		} else {
			e.rank = scoring.Rank(e.cand.Score, e.cand.CreatedAt, now, halfLife)
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].rank != out[j].rank {
			return out[i].rank > out[j].rank
		}
		if !out[i].cand.CreatedAt.Equal(out[j].cand.CreatedAt) {
			return out[i].cand.CreatedAt.After(out[j].cand.CreatedAt)
		}
		return out[i].key < out[j].key
	})
	return out
}

// unread drops entries created at or before since.
func unread(entries []entry, since *time.Time) []entry {
	if since == nil {
		return entries
	}
	out := entries[:0]
	for _, e := range entries {
		if e.cand.CreatedAt.After(*since) {
			out = append(out, e)
		}
	}
	return out
}

// paginate returns the contiguous slice [(page-1)*limit, page*limit).
// A page past the end is empty, never nil. The page is checked against the
// page count before any multiplication so huge pages cannot wrap around.
func paginate[T any](items []T, page, limit int) []T {
	if page < 1 || limit <= 0 {
		return []T{}
	}
	if page-1 >= (len(items)+limit-1)/limit {
		return []T{}
	}
	start := (page - 1) * limit
	end := min(start+limit, len(items))
	return items[start:end]
}
