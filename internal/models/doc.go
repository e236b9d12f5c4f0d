// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

/*
Package models defines the records shared by the featstab evaluation pipeline.

Key Components:

  - Record: one recorded execution of a feature-selection method (a result row)
  - ResultType / Sampling: closed variants validated at ingestion
  - GroupKey: identity of a result group (name, dataset, num_selected)
  - ScoreRecord / ScoreSummary: classification quality rows
  - StabilityRecord / StabilitySummary: consistency rows with optional metrics
  - ExecutionTimes: processing time aggregation per configuration

Result records are immutable inputs. Every derived row is newly built by the
aggregators and never aliases the slices of the records it came from.

Errors:

The package also owns the error taxonomy used across the pipeline
(ErrNotFound, ErrInvalidFormat, ErrInvalidArgument, ErrEmptyResult,
ErrNoScorableResults). Callers wrap them with context and test with errors.Is.
*/
package models
