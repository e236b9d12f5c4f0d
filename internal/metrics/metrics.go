// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Stability Metrics
	StabilityGroupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featstab_stability_groups_total",
			Help: "Total number of result groups evaluated for stability",
		},
		[]string{"result_type"},
	)

	StabilityCutoffsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featstab_stability_cutoffs_total",
			Help: "Total number of (group, cutoff) stability rows produced",
		},
		[]string{"result_type"},
	)

	StabilityGroupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "featstab_stability_group_duration_seconds",
			Help:    "Time spent evaluating one result group",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"result_type"},
	)

	// Scoring Metrics
	SelectionsScoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featstab_selections_scored_total",
			Help: "Total number of feature selections scored by the classifier panel",
		},
		[]string{"encoding"},
	)

	ClassifierDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "featstab_classifier_duration_seconds",
			Help:    "Cross-validation time of one classifier on one selection",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"classifier"},
	)

	EncodingFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featstab_encoding_failures_total",
			Help: "Total number of result encodings skipped during scoring",
		},
		[]string{"encoding"},
	)

	// Score Cache Metrics
	ScoreCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "featstab_score_cache_hits_total",
			Help: "Total number of score cache hits",
		},
	)

	ScoreCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "featstab_score_cache_misses_total",
			Help: "Total number of score cache misses",
		},
	)

	// Dataset Metrics
	DatasetsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "featstab_datasets_loaded",
			Help: "Number of datasets held by the dataset store",
		},
	)

	// Pipeline Metrics
	TablesWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featstab_tables_written_total",
			Help: "Total number of output tables written",
		},
		[]string{"table"},
	)

	StageFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featstab_stage_failures_total",
			Help: "Total number of guarded pipeline stages that failed",
		},
		[]string{"stage"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "featstab_run_duration_seconds",
			Help:    "Duration of a full evaluation run",
			Buckets: []float64{1, 5, 10, 30, 60, 300, 900, 1800, 3600},
		},
	)

	// Database Metrics
	DBExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_export_duration_seconds",
			Help:    "Duration of DuckDB table exports in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"table"},
	)

	DBExportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_export_errors_total",
			Help: "Total number of failed DuckDB table exports",
		},
		[]string{"table"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of calls through a circuit breaker by result",
		},
		[]string{"name", "result"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordStabilityGroup records one evaluated result group
func RecordStabilityGroup(resultType string, rows int, duration time.Duration) {
	StabilityGroupsTotal.WithLabelValues(resultType).Inc()
	StabilityCutoffsTotal.WithLabelValues(resultType).Add(float64(rows))
	StabilityGroupDuration.WithLabelValues(resultType).Observe(duration.Seconds())
}

// RecordSelectionScored records one selection scored by the classifier panel
func RecordSelectionScored(encoding string) {
	SelectionsScoredTotal.WithLabelValues(encoding).Inc()
}

// RecordClassifier records the cross-validation time of one classifier
func RecordClassifier(classifier string, duration time.Duration) {
	ClassifierDuration.WithLabelValues(classifier).Observe(duration.Seconds())
}

// RecordEncodingFailure records a result encoding skipped during scoring
func RecordEncodingFailure(encoding string) {
	EncodingFailuresTotal.WithLabelValues(encoding).Inc()
}

// RecordCacheLookup records a score cache lookup
func RecordCacheLookup(hit bool) {
	if hit {
		ScoreCacheHits.Inc()
	} else {
		ScoreCacheMisses.Inc()
	}
}

// SetDatasetsLoaded updates the dataset gauge
func SetDatasetsLoaded(n int) {
	DatasetsLoaded.Set(float64(n))
}

// RecordTableWritten records an output table
func RecordTableWritten(table string) {
	TablesWrittenTotal.WithLabelValues(table).Inc()
}

// RecordStageFailure records a guarded stage that failed
func RecordStageFailure(stage string) {
	StageFailuresTotal.WithLabelValues(stage).Inc()
}

// RecordRun records the duration of a full run
func RecordRun(duration time.Duration) {
	RunDuration.Observe(duration.Seconds())
}

// RecordDBExport records a DuckDB table export
func RecordDBExport(table string, duration time.Duration, err error) {
	DBExportDuration.WithLabelValues(table).Observe(duration.Seconds())
	if err != nil {
		DBExportErrors.WithLabelValues(table).Inc()
	}
}

// RecordBreakerTransition records a circuit breaker state change
func RecordBreakerTransition(name, from, to string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordBreakerRequest records one call through a circuit breaker; result is
// success, failure or rejected
func RecordBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
