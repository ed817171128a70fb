package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
	"github.com/actuallystonmai/bookfeed-service/internal/handler"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct{}

func (stubService) GetFeed(_ context.Context, _ int64, opts domain.FeedOptions) (*domain.FeedResponse, error) {
	return &domain.FeedResponse{Page: opts.Page, Limit: opts.Limit, Items: []domain.FeedItem{}}, nil
}

func (stubService) GetUnreadCount(context.Context, int64, []domain.Source, time.Time) (int, error) {
	return 0, nil
}

func (stubService) GetBatchFeeds(_ context.Context, opts domain.BatchOptions) (*domain.BatchResponse, error) {
	return &domain.BatchResponse{Page: opts.Page, Limit: opts.Limit}, nil
}

func TestRoutes(t *testing.T) {
	h := handler.NewHandler(stubService{}, zerolog.Nop())
	srv := Setup(h, zerolog.Nop(), Options{RequestTimeout: time.Second})

	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/users/1/feed", http.StatusOK},
		{"/users/1/feed/unread-count?since=2026-01-01T00:00:00Z", http.StatusOK},
		{"/feeds/batch", http.StatusOK},
		{"/users/1/recommendations", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHealthBody(t *testing.T) {
	srv := Setup(handler.NewHandler(stubService{}, zerolog.Nop()), zerolog.Nop(), Options{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRateLimitAppliesToFeedOnly(t *testing.T) {
	h := handler.NewHandler(stubService{}, zerolog.Nop())
	srv := Setup(h, zerolog.Nop(), Options{RateLimitRequests: 2, RateLimitWindow: time.Minute})

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/1/feed", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := handler.NewHandler(stubService{}, zerolog.Nop())
	srv := Setup(h, zerolog.Nop(), Options{CORSOrigins: []string{"https://app.example.org"}})

	req := httptest.NewRequest(http.MethodOptions, "/users/1/feed", nil)
	req.Header.Set("Origin", "https://app.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthReportsCacheBreaker(t *testing.T) {
	srv := Setup(handler.NewHandler(stubService{}, zerolog.Nop()), zerolog.Nop(), Options{
		CacheState: func() string { return "open" },
	})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","cache":"open"}`, rec.Body.String())
}
