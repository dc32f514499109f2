// Package metrics defines the Prometheus instruments for collection jobs,
// provider calls and metric-store writes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Job Metrics
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seodash_job_runs_total",
			Help: "Total number of collection job runs by outcome",
		},
		[]string{"job", "outcome"}, // "success", "failure", "unauthorized"
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seodash_job_duration_seconds",
			Help:    "Wall-clock duration of collection jobs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"job"},
	)

	JobLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "seodash_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run of each job",
		},
		[]string{"job"},
	)

	// UnitFailures counts failures caught inside a job (location, platform, batch)
	UnitFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seodash_job_unit_failures_total",
			Help: "Total number of isolated unit failures inside collection jobs",
		},
		[]string{"job", "unit"},
	)

	// Store Metrics
	RowsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seodash_rows_upserted_total",
			Help: "Total number of metric rows written",
		},
		[]string{"table"},
	)

	// Provider Metrics
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seodash_provider_requests_total",
			Help: "Total number of provider API requests by outcome",
		},
		[]string{"provider", "outcome"}, // "success", "http_error", "transport_error", "rejected"
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seodash_provider_request_duration_seconds",
			Help:    "Provider API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "seodash_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seodash_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordJob records the outcome and duration of one job run
func RecordJob(job string, duration time.Duration, err error) {
	JobDuration.WithLabelValues(job).Observe(duration.Seconds())
	if err != nil {
		JobRuns.WithLabelValues(job, "failure").Inc()
		return
	}
	JobRuns.WithLabelValues(job, "success").Inc()
	JobLastSuccess.WithLabelValues(job).SetToCurrentTime()
}

// RecordUnauthorized counts a rejected trigger
func RecordUnauthorized(job string) {
	JobRuns.WithLabelValues(job, "unauthorized").Inc()
}

// RecordUnitFailure counts a failure isolated to one unit of a job
func RecordUnitFailure(job, unit string) {
	UnitFailures.WithLabelValues(job, unit).Inc()
}

// RecordUpsert counts rows written to a table
func RecordUpsert(table string, n int) {
	if n <= 0 {
		return
	}
	RowsUpserted.WithLabelValues(table).Add(float64(n))
}

// RecordProviderRequest records one provider call
func RecordProviderRequest(provider, outcome string, duration time.Duration) {
	ProviderRequests.WithLabelValues(provider, outcome).Inc()
	if duration > 0 {
		ProviderLatency.WithLabelValues(provider).Observe(duration.Seconds())
	}
}
