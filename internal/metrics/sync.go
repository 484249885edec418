package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Synchronization Prometheus metrics.
var (
	SyncOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "sync_operations_total",
			Help:      "Completed index synchronization operations",
		},
		[]string{"model", "op", "status"}, // op: "index" / "remove"; status: "ok" / "error" / "given_up"
	)

	SyncRemoveAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "sync_remove_attempts_total",
			Help:      "Index removal attempts by outcome",
		},
		[]string{"model", "outcome"}, // "ok" / "not_found" / "error"
	)

	SyncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchsync",
			Name:      "sync_duration_seconds",
			Help:      "Time from hook to completion signal, retries included",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"model", "op"},
	)
)

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "search_requests_total",
			Help:      "Search requests by outcome",
		},
		[]string{"model", "status"}, // "ok" / "malformed" / "error"
	)

	HydrationMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "hydration_misses_total",
			Help:      "Hits whose primary-store record was missing during hydration",
		},
		[]string{"model"},
	)
)

var registerOnce sync.Once

// RegisterSyncMetrics registers synchronization and search metrics. Safe to call more than once.
func RegisterSyncMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(SyncOperationsTotal)
		prometheus.MustRegister(SyncRemoveAttemptsTotal)
		prometheus.MustRegister(SyncDuration)
		prometheus.MustRegister(SearchRequestsTotal)
		prometheus.MustRegister(HydrationMissesTotal)
	})
}
