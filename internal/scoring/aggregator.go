// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package scoring

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/tomtom215/featstab/internal/datasets"
	"github.com/tomtom215/featstab/internal/metrics"
	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/results"
	"github.com/tomtom215/featstab/internal/stability"
	"github.com/tomtom215/featstab/internal/validation"
	"github.com/tomtom215/featstab/internal/workpool"
)

// cutoffOptions validates the cutoffs passed to ScoreAll.
type cutoffOptions struct {
	EvaluateAt []int `validate:"omitempty,cutoffs"`
}

// Aggregator scores every recorded selection at a results location.
type Aggregator struct {
	scorer  SelectionScorer
	workers int
	logger  zerolog.Logger
}

// NewAggregator creates an Aggregator scoring with scorer on up to workers
// goroutines; workers <= 1 scores sequentially.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewAggregator(scorer SelectionScorer, workers int, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		scorer:  scorer,
		workers: workers,
		logger:  logger.With().Str("component", "scoring").Logger(),
	}
}

// selection is one unit of scoring work.
type selection struct {
	record   *models.Record
	features []int
	selected int
}

// ScoreAll scores the subset, rank and weights records at location. An
// encoding that cannot be loaded, decoded or scored is logged and skipped;
// models.ErrNoScorableResults is returned only when all of them fail. Rows
// come back grouped by encoding in record order.
func (a *Aggregator) ScoreAll(
	ctx context.Context,
	ds datasets.Getter,
	location string,
	evaluateAt []int,
) ([]models.ScoreRecord, error) {
	if err := validation.ValidateStruct(&cutoffOptions{EvaluateAt: evaluateAt}); err != nil {
		return nil, fmt.Errorf("scoring options: %w", err)
	}
	if len(evaluateAt) == 0 {
		evaluateAt = stability.DefaultEvaluateAt
	}

	var complete []models.ScoreRecord
	scored := 0
	for _, rt := range models.ResultTypes() {
		rows, err := a.scoreEncoding(ctx, ds, location, rt, evaluateAt)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			metrics.RecordEncodingFailure(string(rt))
			a.logger.Warn().Err(err).Str("result_type", string(rt)).
				Msg("Could not score results, skipping encoding")
			continue
		}
		scored++
		complete = append(complete, rows...)
	}

	if scored == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrNoScorableResults, location)
	}
	a.logger.Info().
		Int("encodings", scored).
		Int("rows", len(complete)).
		Msg("Scored results")
	return complete, nil
}

// SummarizedScoreAll runs ScoreAll and returns the summarized and the
// complete score tables.
func (a *Aggregator) SummarizedScoreAll(
	ctx context.Context,
	ds datasets.Getter,
	location string,
	evaluateAt []int,
) ([]models.ScoreSummary, []models.ScoreRecord, error) {
	complete, err := a.ScoreAll(ctx, ds, location, evaluateAt)
	if err != nil {
		return nil, nil, err
	}
	return Summarize(complete), complete, nil
}

func (a *Aggregator) scoreEncoding(
	ctx context.Context,
	ds datasets.Getter,
	location string,
	rt models.ResultType,
	evaluateAt []int,
) ([]models.ScoreRecord, error) {
	t, err := results.LoadByResultType(location, string(rt))
	if err != nil {
		return nil, err
	}
	records, err := results.DecodeRecords(t)
	if err != nil {
		return nil, err
	}

	work := selections(records, evaluateAt)
	a.logger.Debug().
		Str("result_type", string(rt)).
		Int("records", len(records)).
		Int("selections", len(work)).
		Msg("Scoring encoding")

	return workpool.Map(ctx, a.workers, work, func(ctx context.Context, s selection) (models.ScoreRecord, error) {
		return a.score(ctx, ds, s)
	})
}

// selections expands records into scoring work: subsets in ascending index
// order, ranks and weights at every cutoff shorter than the encoding.
func selections(records []models.Record, evaluateAt []int) []selection {
	var work []selection
	for i := range records {
		rec := &records[i]
		switch rec.ResultType {
		case models.ResultSubset:
			// Order carries no meaning in a subset; a canonical order makes
			// equal subsets score and cache identically.
			features := slices.Clone(rec.Indices)
			slices.Sort(features)
			work = append(work, selection{record: rec, features: features, selected: rec.NumSelected})
		case models.ResultRank, models.ResultWeights:
			rank := rec.Indices
			if rec.ResultType == models.ResultWeights {
				rank = stability.RankFromWeights(rec.Weights)
			}
			for _, k := range evaluateAt {
				if k < len(rank) {
					work = append(work, selection{record: rec, features: rank[:k], selected: k})
				}
			}
		}
	}
	return work
}

func (a *Aggregator) score(ctx context.Context, ds datasets.Getter, s selection) (models.ScoreRecord, error) {
	rec := s.record
	dataset, err := ds.Get(rec.DatasetName)
	if err != nil {
		return models.ScoreRecord{}, err
	}

	scores, err := a.scorer.ScoreSelection(ctx, dataset, s.features)
	if err != nil {
		return models.ScoreRecord{}, fmt.Errorf("%s on %s (selected %d): %w", rec.Name, rec.DatasetName, s.selected, err)
	}
	values, err := rec.EncodeValues()
	if err != nil {
		return models.ScoreRecord{}, err
	}
	metrics.RecordSelectionScored(string(rec.ResultType))

	a.logger.Debug().
		Str("name", rec.Name).
		Str("dataset", rec.DatasetName).
		Int("features", rec.NumFeatures).
		Int("selected", s.selected).
		Msg("Evaluated results")

	return models.ScoreRecord{
		Name:           rec.Name,
		Dataset:        rec.DatasetName,
		Features:       rec.NumFeatures,
		Selected:       s.selected,
		Sampling:       rec.Sampling,
		ProcessingTime: rec.ProcessingTime,
		Values:         values,
		Scores:         scores.Flatten(),
	}, nil
}
