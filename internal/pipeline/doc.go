// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

/*
Package pipeline runs a complete evaluation over a results location.

A run executes its stages in a fixed order:

 1. scoring: datasets are loaded, every recorded selection is scored and
    the scoring and scoring-complete tables are written
 2. stability: one summary and one complete table per configured sampling
    scheme (stability-bootstrap, stability-percent90)
 3. determinism: stability of the sampling=none executions
 4. times: mean processing time per algorithm and dataset

Stability and determinism failures are logged and recorded in the run
report; the remaining stages still run. A scoring or times failure aborts
the run.

Output tables are written as csv under the configured output directory,
prefixed with the run start time (unix seconds) when timestamping is on,
and mirrored into DuckDB when an Exporter is configured.

The Runner implements the status provider of the HTTP API, so a run can be
observed while in progress:

	runner := pipeline.NewRunner(cfg, pipeline.Deps{Datasets: store, Scorer: scorer}, logger)
	report, err := runner.Run(ctx)
*/
package pipeline
