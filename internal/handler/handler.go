package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type FeedService interface {
	GetFeed(ctx context.Context, userID int64, opts domain.FeedOptions) (*domain.FeedResponse, error)
	GetUnreadCount(ctx context.Context, userID int64, types []domain.Source, since time.Time) (int, error)
	GetBatchFeeds(ctx context.Context, opts domain.BatchOptions) (*domain.BatchResponse, error)
}

type Handler struct {
	service FeedService
	logger  zerolog.Logger
}

func NewHandler(svc FeedService, logger zerolog.Logger) *Handler {
	return &Handler{
		service: svc,
		logger:  logger.With().Str("component", "handler").Logger(),
	}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}
