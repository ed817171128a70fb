package domain

import "time"

type Source string

const (
	SourcePersonal  Source = "personal"
	SourceTrending  Source = "trending"
	SourceFollowing Source = "following"
)

// AllSources is the default type set for a feed request.
var AllSources = []Source{SourcePersonal, SourceTrending, SourceFollowing}

func (s Source) Valid() bool {
	switch s {
	case SourcePersonal, SourceTrending, SourceFollowing:
		return true
	}
	return false
}

// Candidate is a provisional recommendation emitted by one provider.
type Candidate struct {
	Book      BookRef
	Score     float64
	Reason    string
	CreatedAt time.Time
	Source    Source
	Fallback  bool
}

type FeedItem struct {
	ID             string    `json:"id"`
	Source         Source    `json:"source"`
	Score          float64   `json:"score"`
	Rank           float64   `json:"rank"`
	CreatedAt      time.Time `json:"created_at"`
	FriendlyReason string    `json:"friendly_reason"`
	Book           BookRef   `json:"book"`
}

// FeedOptions must be validated by the caller: Page >= 1, Limit in [1,50].
type FeedOptions struct {
	Page  int
	Limit int
	Types []Source
	Since *time.Time
}

type FeedResponse struct {
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Total int        `json:"total"`
	Items []FeedItem `json:"items"`
}
