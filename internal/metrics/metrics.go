// Package metrics registers the Prometheus collectors for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollCycles counts completed now-playing poll cycles by outcome
	// ("playing", "idle", "error", "stale").
	PollCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdwk_nowplaying_poll_cycles_total",
			Help: "Total now-playing poll cycles by outcome",
		},
		[]string{"outcome"},
	)

	// UpstreamRequests counts outbound requests by host and outcome
	// ("ok", "not_found", "status", "transport").
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdwk_upstream_requests_total",
			Help: "Total upstream API requests by host and outcome",
		},
		[]string{"host", "outcome"},
	)

	// BreakerState reports the circuit breaker state per upstream
	// (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pdwk_upstream_breaker_state",
			Help: "Circuit breaker state per upstream (0=closed, 1=half-open, 2=open)",
		},
		[]string{"upstream"},
	)

	// RepoRefreshes counts aggregator refresh runs by outcome
	// ("ok", "partial", "empty").
	RepoRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdwk_repo_refreshes_total",
			Help: "Total repository aggregation refreshes by outcome",
		},
		[]string{"outcome"},
	)

	// ThemeTransitions counts applied theme changes by theme name.
	ThemeTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdwk_theme_transitions_total",
			Help: "Total theme transitions by target theme",
		},
		[]string{"theme"},
	)
)
