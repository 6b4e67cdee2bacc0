// Package metrics declares the service's Prometheus collectors. They are
// registered on the default registry at init and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and route pattern.
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordhunt_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wordhunt_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// RateLimiterRejections counts requests refused by the per-client limiter.
	RateLimiterRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wordhunt_rate_limiter_rejections_total",
			Help: "Total number of requests rejected by rate limiter",
		},
	)

	// GamesStarted counts sessions by word length and mode.
	GamesStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordhunt_games_started_total",
			Help: "Games started",
		},
		[]string{"length", "mode"},
	)

	// GamesFinished counts terminal outcomes by word length.
	GamesFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordhunt_games_finished_total",
			Help: "Games that reached a terminal outcome",
		},
		[]string{"length", "outcome"},
	)

	// Guesses counts submitted guesses by result: evaluated, invalid_word, noop.
	Guesses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordhunt_guesses_total",
			Help: "Guess submissions by result",
		},
		[]string{"result"},
	)

	// Hints counts hint requests by kind and result (granted, or the refusal reason).
	Hints = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordhunt_hints_total",
			Help: "Hint requests by kind and result",
		},
		[]string{"kind", "result"},
	)

	// ActiveGames tracks live sessions in the registry.
	ActiveGames = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wordhunt_active_games",
			Help: "Games currently held in memory",
		},
	)

	// WordSourceRequests counts word source calls by source, operation and result.
	WordSourceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordhunt_word_source_requests_total",
			Help: "Word source calls",
		},
		[]string{"source", "op", "result"},
	)

	// WordSourceDuration measures remote word source latency.
	WordSourceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wordhunt_word_source_duration_seconds",
			Help:    "Word source call duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"source", "op"},
	)
)
