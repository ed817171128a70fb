package domain

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// BatchUserResult is one user's first feed page in a batch run. A failed
// user carries an error code instead of items.
type BatchUserResult struct {
	UserID  int64      `json:"user_id"`
	Items   []FeedItem `json:"items,omitempty"`
	Total   int        `json:"total"`
	Status  string     `json:"status"`
	Error   string     `json:"error,omitempty"`
	Message string     `json:"message,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchMeta struct {
	GeneratedAt string `json:"generated_at"`
}

// BatchOptions selects a page of users; Feed is applied to every user's
// feed and must already be validated like a single feed request.
type BatchOptions struct {
	Page  int
	Limit int
	Feed  FeedOptions
}

type BatchResponse struct {
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	FeedLimit  int               `json:"feed_limit"`
	TotalUsers int               `json:"total_users"`
	Results    []BatchUserResult `json:"results"`
	Summary    BatchSummary      `json:"summary"`
	Metadata   BatchMeta         `json:"metadata"`
}
