// Package metrics provides Prometheus metrics for the reader.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eggcracker"

// Outcomes of a read request.
const (
	OutcomeOK            = "ok"
	OutcomeInvalidURL    = "invalid_url"
	OutcomeForbidden     = "forbidden"
	OutcomeUpstreamError = "upstream_error"
	OutcomeRenderError   = "render_error"
)

var (
	// ReadsTotal counts /read requests by outcome.
	ReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reads_total",
			Help:      "Total number of read requests",
		},
		[]string{"outcome"},
	)

	// FetchDuration measures upstream fetch duration.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of upstream fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	// FetchErrorsTotal counts upstream failures by kind.
	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Total number of failed upstream fetches",
		},
		[]string{"kind"},
	)

	// PipelineDuration measures extraction through excerpt building.
	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of content extraction and cleaning in seconds",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method"},
	)

	// ExcerptChars observes excerpt sizes in characters.
	ExcerptChars = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "excerpt_chars",
			Help:      "Distribution of excerpt lengths in characters",
			Buckets:   []float64{0, 100, 250, 500, 1000, 1500, 2000, 2500, 5000},
		},
	)

	// TruncatedTotal counts excerpts cut at the character budget.
	TruncatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "excerpts_truncated_total",
			Help:      "Total number of excerpts truncated to the character budget",
		},
	)

	// InFlight tracks read requests currently being served.
	InFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reads_in_flight",
			Help:      "Number of read requests currently in flight",
		},
	)
)

// RecordRead records the outcome of a read request.
func RecordRead(outcome string) {
	ReadsTotal.WithLabelValues(outcome).Inc()
}

// RecordFetch records an upstream fetch. status is "ok" or "error".
func RecordFetch(status string, duration float64) {
	FetchDuration.WithLabelValues(status).Observe(duration)
}

// RecordFetchError records a failed fetch by kind.
func RecordFetchError(kind string) {
	FetchErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordPipeline records one pipeline run.
func RecordPipeline(method string, duration float64, excerptChars int, truncated bool) {
	PipelineDuration.WithLabelValues(method).Observe(duration)
	ExcerptChars.Observe(float64(excerptChars))
	if truncated {
		TruncatedTotal.Inc()
	}
}
