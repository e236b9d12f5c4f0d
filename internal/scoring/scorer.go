// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package scoring

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/featstab/internal/cache"
	"github.com/tomtom215/featstab/internal/datasets"
	"github.com/tomtom215/featstab/internal/models"
)

// SelectionScorer scores one feature selection of a dataset.
type SelectionScorer interface {
	ScoreSelection(ctx context.Context, ds *datasets.Dataset, features []int) (models.ClassifierScores, error)
}

// FingerprintedScorer is a SelectionScorer whose settings are identified by
// a stable fingerprint.
type FingerprintedScorer interface {
	SelectionScorer
	Fingerprint() string
}

// Store persists scores by key.
type Store interface {
	Get(key string) (models.ClassifierScores, bool, error)
	Put(key string, scores models.ClassifierScores) error
}

// CachedScorer serves scores from a Store and scores only on a miss. Store
// failures are logged and never fail the scoring.
type CachedScorer struct {
	next   FingerprintedScorer
	store  Store
	logger zerolog.Logger
}

// NewCachedScorer wraps next with store.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewCachedScorer(next FingerprintedScorer, store Store, logger zerolog.Logger) *CachedScorer {
	return &CachedScorer{
		next:   next,
		store:  store,
		logger: logger.With().Str("component", "scoring").Logger(),
	}
}

// ScoreSelection implements SelectionScorer.
func (c *CachedScorer) ScoreSelection(ctx context.Context, ds *datasets.Dataset, features []int) (models.ClassifierScores, error) {
	key := cache.Key(c.next.Fingerprint(), ds.Name, features)

	scores, ok, err := c.store.Get(key)
	if err != nil {
		c.logger.Warn().Err(err).Str("dataset", ds.Name).Msg("Score cache lookup failed")
	} else if ok {
		return scores, nil
	}

	scores, err = c.next.ScoreSelection(ctx, ds, features)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(key, scores); err != nil {
		c.logger.Warn().Err(err).Str("dataset", ds.Name).Msg("Score cache write failed")
	}
	return scores, nil
}
