// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

/*
Package metrics provides Prometheus metrics for evaluation runs.

Metrics are registered on the default registry through promauto and are
exposed at /metrics by the optional status server:

	curl http://127.0.0.1:9464/metrics

# Available Metrics

Stability:
  - featstab_stability_groups_total: Result groups evaluated (counter)
    Labels: result_type
  - featstab_stability_cutoffs_total: Stability rows produced (counter)
    Labels: result_type
  - featstab_stability_group_duration_seconds: Group evaluation time (histogram)
    Labels: result_type

Scoring:
  - featstab_selections_scored_total: Selections scored (counter)
    Labels: encoding (subset, rank, weights)
  - featstab_classifier_duration_seconds: Cross-validation time (histogram)
    Labels: classifier
  - featstab_encoding_failures_total: Encodings skipped (counter)
    Labels: encoding
  - featstab_score_cache_hits_total / featstab_score_cache_misses_total

Pipeline:
  - featstab_datasets_loaded: Datasets held by the store (gauge)
  - featstab_tables_written_total: Output tables (counter)
    Labels: table
  - featstab_stage_failures_total: Guarded stages that failed (counter)
    Labels: stage
  - featstab_run_duration_seconds: Full run duration (histogram)

Database and API:
  - duckdb_export_duration_seconds, duckdb_export_errors_total
    Labels: table
  - api_requests_total, api_request_duration_seconds, api_active_requests

Example PromQL queries:

	# Groups per second by encoding
	rate(featstab_stability_groups_total[5m])

	# Score cache hit rate
	featstab_score_cache_hits_total / (featstab_score_cache_hits_total + featstab_score_cache_misses_total)

	# p95 classifier time
	histogram_quantile(0.95, rate(featstab_classifier_duration_seconds_bucket[5m]))

# Thread Safety

All recording functions are safe for concurrent use from the worker pool.
*/
package metrics
