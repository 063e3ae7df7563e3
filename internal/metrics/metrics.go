// Package metrics holds the Prometheus collectors shared across shopfront.
//
// Collectors are registered on the default registry through promauto and
// exposed by the API server at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts calls to the commerce API by endpoint and outcome (ok, error, rejected).
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_upstream_requests_total",
			Help: "Calls to the upstream commerce API",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopfront_upstream_request_duration_seconds",
			Help:    "Upstream commerce API latency",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	// UpstreamRetries counts retried attempts by reason (network or the HTTP status).
	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_upstream_retries_total",
			Help: "Retried upstream attempts",
		},
		[]string{"reason"},
	)

	// PollCycles counts notification poll cycles by poller and outcome (ok, error, stale).
	PollCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_poll_cycles_total",
			Help: "Notification poll cycles",
		},
		[]string{"poller", "outcome"},
	)

	// Unseen is the current unseen notification count by kind
	// (new_order, low_stock, sold_out, unread_message).
	Unseen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shopfront_unseen_notifications",
			Help: "Current unseen admin notifications",
		},
		[]string{"kind"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shopfront_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CatalogSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shopfront_catalog_sessions",
			Help: "Live catalog browsing sessions",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_http_requests_total",
			Help: "Requests served by the shopfront API",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopfront_http_request_duration_seconds",
			Help:    "Shopfront API latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
