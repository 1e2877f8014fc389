// Package metrics holds the Prometheus collectors shared by the dashboard.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeAuthFailed  = "auth_failed"
	OutcomeUnavailable = "unavailable"
)

var (
	SourceFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_source_fetch_total",
			Help: "Number of warehouse fetches by outcome.",
		},
		[]string{"outcome"},
	)

	SourceFetchLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashboard_source_fetch_seconds",
			Help:    "Latency of warehouse fetches.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_cache_hits_total",
			Help: "Result cache lookups served without a fetch.",
		})

	CachedRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_cached_rows",
			Help: "Rows held by the result cache.",
		})

	HTTPStatus = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_http_status_total",
			Help: "Count of HTTP responses by status code.",
		},
		[]string{"status"},
	)
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
