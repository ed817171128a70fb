// Package metrics registers the Prometheus instruments of the feed service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_provider_duration_seconds",
			Help:    "Duration of candidate provider calls in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"provider"},
	)

	ProviderFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_provider_failures_total",
			Help: "Candidate provider calls that were replaced by an empty result",
		},
		[]string{"provider", "reason"}, // reason: error, timeout, panic
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_lookups_total",
			Help: "Result cache lookups by provider and outcome",
		},
		[]string{"provider", "result"}, // result: hit, miss, error
	)

	ComposeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_compose_duration_seconds",
			Help:    "End-to-end feed composition time in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	FeedCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_candidates_after_dedupe",
			Help:    "Number of candidates surviving deduplication and filtering",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		},
	)
)
