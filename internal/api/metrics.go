package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for outbound request monitoring. Registered in the
// default registry on package import.

var (
	// requestsTotal counts outbound API requests by method and outcome.
	//
	// Labels: method (GET, POST, ...), status ("200", "401", "network_error")
	// Type: Counter
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newstotext_client_requests_total",
			Help: "Total number of outbound API requests",
		},
		[]string{"method", "status"},
	)

	// requestDuration measures outbound request latency.
	//
	// Labels: method
	// Type: Histogram, default Prometheus buckets
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newstotext_client_request_duration_seconds",
			Help:    "Outbound API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// authFailuresTotal counts 401 responses. A spike means the token was
	// revoked or expired server-side.
	//
	// Type: Counter
	authFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newstotext_client_auth_failures_total",
			Help: "Total number of authorization failures (401 responses)",
		},
	)
)
