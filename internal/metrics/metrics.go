// Package metrics provides Prometheus metrics for the pop tracker.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poptracker_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poptracker_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Lookup pipeline metrics
	LookupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poptracker_lookups_total",
			Help: "Total number of item lookups performed",
		},
	)

	LookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poptracker_lookup_duration_seconds",
			Help:    "Time taken to run a full item lookup",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	SourceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poptracker_source_failures_total",
			Help: "Outbound source calls that failed and degraded to empty results",
		},
		[]string{"source"},
	)

	ScrapeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poptracker_scrape_duration_seconds",
			Help:    "Time taken per outbound source call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// History store metrics
	SnapshotWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poptracker_snapshot_writes_total",
			Help: "Snapshots recorded, by store",
		},
		[]string{"store"},
	)

	TrackedItemsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poptracker_tracked_items_total",
			Help: "Number of items with at least one population snapshot",
		},
	)

	PriceEstimatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poptracker_price_estimates_total",
			Help: "Lookups that produced a live price estimate",
		},
	)

	PriceFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poptracker_price_fallbacks_total",
			Help: "Lookups that fell back to the last recorded price",
		},
	)
)
