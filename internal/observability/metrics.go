// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Fetch metrics
	FetchesTotal  *prometheus.CounterVec
	FetchLatency  prometheus.Histogram
	RecordsParsed prometheus.Counter

	// Aggregation metrics
	InvalidRecords      *prometheus.CounterVec
	AggregationDuration prometheus.Histogram
	AggregationsTotal   *prometheus.CounterVec
	SnapshotTrades      prometheus.Gauge
	SnapshotAgeSeconds  prometheus.Gauge

	// Cache metrics
	CacheReads *prometheus.CounterVec

	// Serving metrics
	WSClients      prometheus.Gauge
	FilterRequests prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "auction_analytics"
	}

	return &Metrics{
		FetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "requests_total",
			Help:      "Total trades API fetches by outcome",
		}, []string{"outcome"}),
		FetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "latency_seconds",
			Help:      "Trades API fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		RecordsParsed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "records_parsed_total",
			Help:      "Total trade records parsed from API payloads",
		}),

		InvalidRecords: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "invalid_records_total",
			Help:      "Records excluded from aggregation by missing field",
		}, []string{"field"}),
		AggregationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "duration_seconds",
			Help:      "Full aggregation pass duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
		AggregationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "runs_total",
			Help:      "Total aggregation passes by status",
		}, []string{"status"}),
		SnapshotTrades: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "snapshot_trades",
			Help:      "Valid trades in the current snapshot",
		}),
		SnapshotAgeSeconds: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "snapshot_age_seconds",
			Help:      "Age of the current snapshot in seconds",
		}),

		CacheReads: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "reads_total",
			Help:      "Cache reads by result (fresh, stale, miss)",
		}, []string{"result"}),

		WSClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "serving",
			Name:      "ws_clients",
			Help:      "Connected WebSocket subscribers",
		}),
		FilterRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "serving",
			Name:      "filter_requests_total",
			Help:      "Total filter recomputation requests",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordFetch records one fetch outcome ("ok", "error", "cancelled").
func RecordFetch(outcome string, seconds float64) {
	DefaultMetrics.FetchesTotal.WithLabelValues(outcome).Inc()
	DefaultMetrics.FetchLatency.Observe(seconds)
}

// RecordAggregation records one aggregation pass.
func RecordAggregation(status string, seconds float64, validTrades int) {
	DefaultMetrics.AggregationsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.AggregationDuration.Observe(seconds)
	DefaultMetrics.SnapshotTrades.Set(float64(validTrades))
}

// RecordInvalid adds a missing-field tally to the invalid-records counter.
func RecordInvalid(tally map[string]int) {
	for field, n := range tally {
		DefaultMetrics.InvalidRecords.WithLabelValues(field).Add(float64(n))
	}
}

// RecordCacheRead records one cache read result.
func RecordCacheRead(result string) {
	DefaultMetrics.CacheReads.WithLabelValues(result).Inc()
}
