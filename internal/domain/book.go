package domain

import (
	"strconv"
	"strings"
	"time"
)

// identityTitleRunes caps the title part of a fallback identity key.
const identityTitleRunes = 64

// BookRef is the catalog projection carried by every candidate and feed item.
type BookRef struct {
	ID           int64     `json:"id,omitempty"`
	ExternalID   string    `json:"external_id,omitempty"`
	Title        string    `json:"title"`
	Authors      []string  `json:"authors"`
	CoverURL     string    `json:"cover_url,omitempty"`
	AvgRating    *float64  `json:"avg_rating,omitempty"`
	RatingsCount int       `json:"ratings_count,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// IdentityKey returns the logical identity of a book. The catalog id wins,
// then the external catalog id, then truncated title plus first author.
// Dedup across providers depends on this order.
func (b BookRef) IdentityKey() string {
	if b.ID > 0 {
		return "id:" + strconv.FormatInt(b.ID, 10)
	}
	if ext := strings.TrimSpace(b.ExternalID); ext != "" {
		return "ext:" + ext
	}

	title := []rune(strings.ToLower(strings.TrimSpace(b.Title)))
	if len(title) > identityTitleRunes {
		title = title[:identityTitleRunes]
	}
	author := ""
	if len(b.Authors) > 0 {
		author = strings.ToLower(strings.TrimSpace(b.Authors[0]))
	}
	return "t:" + string(title) + "|" + author
}

// Rating returns the average catalog rating, or 0 when unknown.
func (b BookRef) Rating() float64 {
	if b.AvgRating == nil {
		return 0
	}
	return *b.AvgRating
}
