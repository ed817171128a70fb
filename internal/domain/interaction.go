package domain

import "time"

type ReadingStatus string

const (
	ReadingStatusWant     ReadingStatus = "want"
	ReadingStatusReading  ReadingStatus = "reading"
	ReadingStatusFinished ReadingStatus = "finished"
)

type Review struct {
	UserID    int64     `json:"user_id"`
	Book      BookRef   `json:"book"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

type ReadingEntry struct {
	UserID    int64         `json:"user_id"`
	Book      BookRef       `json:"book"`
	Status    ReadingStatus `json:"status"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type ShelfItem struct {
	UserID    int64     `json:"user_id"`
	Book      BookRef   `json:"book"`
	CreatedAt time.Time `json:"created_at"`
}

type ActivityType string

const (
	ActivityReview  ActivityType = "review"
	ActivityReading ActivityType = "reading"
	ActivityShelf   ActivityType = "shelf"
)

type ActivityAction string

const (
	ActionCreated  ActivityAction = "created"
	ActionStarted  ActivityAction = "started"
	ActionFinished ActivityAction = "finished"
	ActionAdded    ActivityAction = "added"
)

// Activity is one entry of the activity log written by the social subsystem.
// Book is nil for activities that do not concern a book.
type Activity struct {
	ActorID   int64          `json:"actor_id"`
	ActorName string         `json:"actor_name"`
	Type      ActivityType   `json:"type"`
	Action    ActivityAction `json:"action"`
	Book      *BookRef       `json:"book,omitempty"`
	Rating    float64        `json:"rating,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Message   string         `json:"message,omitempty"`
}

type ActivityQuery struct {
	ActorIDs []int64
	Types    []ActivityType
	Since    *time.Time
	Limit    int
}
