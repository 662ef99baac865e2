package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tracks outbound API calls per source, by outcome.
	SourceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sourcing_source_requests_total",
			Help: "Total number of upstream source requests made (by source and outcome).",
		},
		[]string{"source", "outcome"},
	)

	// Measures duration of upstream search requests.
	SourceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sourcing_source_request_duration_seconds",
			Help:    "Duration of upstream source requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"source"},
	)

	// Counts retry attempts per source and final outcome.
	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sourcing_retry_attempts_total",
			Help: "Retry attempts made per source, by attempt outcome.",
		},
		[]string{"source", "outcome"},
	)

	// Counts searches that degraded a source to an empty contribution.
	DegradedSourcesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sourcing_degraded_sources_total",
			Help: "Number of times a source exhausted its retries and contributed nothing.",
		},
		[]string{"source"},
	)

	// Measures total aggregation duration.
	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sourcing_aggregation_duration_seconds",
			Help:    "Wall-clock duration of a full multi-source aggregation.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 13),
		},
		[]string{},
	)

	// Per-source auth health, set by the periodic prober. 1 healthy, 0 not.
	SourceHealthy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sourcing_source_healthy",
			Help: "Whether the source's authentication currently succeeds.",
		},
		[]string{"source"},
	)

	NATSPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_publish_errors_total",
			Help: "Number of NATS publish failures",
		},
		[]string{"subject"},
	)
)

// ObserveDuration records the time taken since start on the given histogram.
func ObserveDuration(v *prometheus.HistogramVec, start time.Time, labels ...string) {
	v.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
}

// IncSourceRequest bumps the per-source request counter.
func IncSourceRequest(source, outcome string) {
	SourceRequestsTotal.WithLabelValues(source, outcome).Inc()
}

// StartServer exposes /metrics on addr in a background goroutine.
func StartServer(addr string) {
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		http.ListenAndServe(addr, nil) //nolint:errcheck
	}()
}
