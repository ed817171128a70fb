package router

import (
	"net/http"
	"time"

	"github.com/actuallystonmai/bookfeed-service/internal/handler"
	"github.com/actuallystonmai/bookfeed-service/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Options struct {
	RequestTimeout time.Duration
	CORSOrigins    []string
	// RateLimitRequests per RateLimitWindow per client IP; 0 disables.
	RateLimitRequests int
	RateLimitWindow   time.Duration
	// CacheState reports the shared cache breaker state on /health; nil
	// when no shared cache is configured.
	CacheState func() string
}

func Setup(h *handler.Handler, logger zerolog.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
	}
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	// Routes
	r.Get("/health", healthCheck(opts.CacheState))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if opts.RateLimitRequests > 0 && opts.RateLimitWindow > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimitRequests, opts.RateLimitWindow))
		}
		r.Route("/users/{userID}/feed", func(r chi.Router) {
			r.Get("/", h.GetFeed)
			r.Get("/unread-count", h.GetUnreadCount)
		})
		r.Get("/feeds/batch", h.GetBatchFeeds)
	})

	return r
}

type healthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache,omitempty"`
}

// healthCheck stays 200 while the cache breaker is open: feeds are still
// served from the in-process fallback.
func healthCheck(cacheState func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if cacheState != nil {
			resp.Cache = cacheState()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
