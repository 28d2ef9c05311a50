// Package metrics exposes the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector bundles the application metrics. Construct one per process with
// the default registerer, or with a throwaway registry in tests.
type Collector struct {
	FetchesTotal      *prometheus.CounterVec
	FetchErrorsTotal  *prometheus.CounterVec
	FetchDuration     *prometheus.HistogramVec
	DashboardRequests prometheus.Counter
	DashboardDuration prometheus.Histogram
	CacheHitsTotal    prometheus.Counter
}

// NewCollector creates and registers the collectors on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "envmonitor",
				Name:      "fetches_total",
				Help:      "Successful per-target fetches by source",
			},
			[]string{"source"},
		),
		FetchErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "envmonitor",
				Name:      "fetch_errors_total",
				Help:      "Failed per-target fetches by source",
			},
			[]string{"source"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "envmonitor",
				Name:      "fetch_duration_seconds",
				Help:      "Per-target fetch duration by source",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"source"},
		),
		DashboardRequests: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "envmonitor",
				Name:      "dashboard_requests_total",
				Help:      "Dashboard snapshot requests",
			},
		),
		DashboardDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "envmonitor",
				Name:      "dashboard_duration_seconds",
				Help:      "Dashboard snapshot assembly duration",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "envmonitor",
				Name:      "dashboard_cache_hits_total",
				Help:      "Dashboard snapshot cache hits",
			},
		),
	}
}
