// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package stability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/featstab/internal/metrics"
	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/results"
	"github.com/tomtom215/featstab/internal/validation"
	"github.com/tomtom215/featstab/internal/workpool"
)

// DefaultEvaluateAt are the cutoffs used when Options.EvaluateAt is empty.
var DefaultEvaluateAt = []int{5, 10, 20, 50, 100, 200}

// Options configures a stability evaluation.
type Options struct {
	// EvaluateAt are the cutoffs applied to rank and weights groups.
	EvaluateAt []int `validate:"omitempty,cutoffs"`

	// Workers bounds concurrent group evaluation; <= 1 is sequential.
	Workers int `validate:"min=0"`

	// EvaluateAtAllFeatures adds k = num_selected for groups selecting
	// every feature.
	EvaluateAtAllFeatures bool
}

func (o Options) cutoffs() []int {
	if len(o.EvaluateAt) == 0 {
		return DefaultEvaluateAt
	}
	return o.EvaluateAt
}

// Aggregator computes stability tables from recorded results.
type Aggregator struct {
	logger zerolog.Logger
}

// NewAggregator creates an Aggregator.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewAggregator(logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		logger: logger.With().Str("component", "stability").Logger(),
	}
}

// SummarizedAlgorithmsStability loads the records at location, restricted to
// one sampling scheme when sampling is non-nil, and returns the summarized
// and the complete stability tables.
func (a *Aggregator) SummarizedAlgorithmsStability(
	ctx context.Context,
	location string,
	sampling *models.Sampling,
	opts Options,
) ([]models.StabilitySummary, []models.StabilityRecord, error) {
	if err := validation.ValidateStruct(&opts); err != nil {
		return nil, nil, fmt.Errorf("stability options: %w", err)
	}

	var records []models.Record
	if sampling != nil {
		t, err := results.LoadBySampling(location, string(*sampling))
		if err != nil {
			return nil, nil, err
		}
		if records, err = results.DecodeRecords(t); err != nil {
			return nil, nil, err
		}
	} else {
		var err error
		if records, err = results.LoadRecords(location); err != nil {
			return nil, nil, err
		}
	}

	complete, err := a.Evaluate(ctx, records, opts)
	if err != nil {
		return nil, nil, err
	}
	return Summarize(complete), complete, nil
}

// Evaluate partitions records into result groups and evaluates each one.
// Rows come back in sorted group order, cutoffs in evaluation order. The
// first failing group aborts the evaluation.
func (a *Aggregator) Evaluate(ctx context.Context, records []models.Record, opts Options) ([]models.StabilityRecord, error) {
	if err := validation.ValidateStruct(&opts); err != nil {
		return nil, fmt.Errorf("stability options: %w", err)
	}

	groups, err := partition(records)
	if err != nil {
		return nil, err
	}
	a.logger.Info().
		Int("records", len(records)).
		Int("groups", len(groups)).
		Int("workers", opts.Workers).
		Msg("Starting stability analysis")

	evaluateAt := opts.cutoffs()
	perGroup, err := workpool.Map(ctx, opts.Workers, groups, func(_ context.Context, g group) ([]models.StabilityRecord, error) {
		start := time.Now()
		rows := g.evaluate(evaluateAt, opts.EvaluateAtAllFeatures)
		metrics.RecordStabilityGroup(string(g.resultType()), len(rows), time.Since(start))

		key := g.key()
		a.logger.Debug().
			Str("name", key.Name).
			Str("dataset", key.Dataset).
			Int("num_selected", key.NumSelected).
			Int("executions", g.executions()).
			Str("result_type", string(g.resultType())).
			Int("cutoffs", len(rows)).
			Msg("Evaluated result group")
		return rows, nil
	})
	if err != nil {
		return nil, err
	}

	var complete []models.StabilityRecord
	for _, rows := range perGroup {
		complete = append(complete, rows...)
	}
	return complete, nil
}
