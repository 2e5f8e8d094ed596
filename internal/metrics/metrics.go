// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Recommendation requests by strategy and outcome.",
		},
		[]string{"strategy", "status"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "End to end recommendation latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	RecommendResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_results",
			Help:    "Number of venues returned per recommendation.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	RecommendFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_fallbacks_total",
			Help: "Recommendations answered by the top rated fallback.",
		},
	)

	CandidateFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_fetches_total",
			Help: "Candidate source calls by source and outcome.",
		},
		[]string{"source", "status"},
	)

	CandidateFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "candidate_fetch_duration_seconds",
			Help:    "Latency of candidate source calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	CandidateCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_cache_lookups_total",
			Help: "Candidate cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)

	CandidateRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_retries_total",
			Help: "Retried candidate source calls.",
		},
		[]string{"source"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		},
		[]string{"name"},
	)
)
