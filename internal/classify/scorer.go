// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/featstab/internal/config"
	"github.com/tomtom215/featstab/internal/datasets"
	"github.com/tomtom215/featstab/internal/metrics"
	"github.com/tomtom215/featstab/internal/models"
)

// Scorer cross-validates the classifier panel on feature selections.
type Scorer struct {
	classifiers []Classifier
	metricNames []string
	metrics     []Metric
	folds       int
	fingerprint string
	logger      zerolog.Logger
}

// NewScorer builds the default panel from the scoring configuration.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewScorer(cfg *config.ScoringConfig, logger zerolog.Logger) (*Scorer, error) {
	tree := TreeConfig{MaxDepth: cfg.MaxDepth, MinSamplesSplit: cfg.MinSamplesSplit}
	panel := []Classifier{
		NewSupportVectorMachine(SVMConfig{Lambda: cfg.SVMLambda, Epochs: cfg.SVMEpochs, Seed: cfg.Seed}),
		NewDecisionTree(tree),
		NewRandomForest(ForestConfig{Tree: tree, Trees: cfg.Trees, Seed: cfg.Seed}),
		NaiveBayes{},
		ZeroR{},
	}

	s, err := NewScorerWith(panel, cfg.Metrics, cfg.Folds, logger)
	if err != nil {
		return nil, err
	}
	s.fingerprint = fmt.Sprintf("folds=%d;seed=%d;metrics=%s;trees=%d;depth=%d;split=%d;lambda=%g;epochs=%d",
		cfg.Folds, cfg.Seed, strings.Join(cfg.Metrics, ","), cfg.Trees, cfg.MaxDepth,
		cfg.MinSamplesSplit, cfg.SVMLambda, cfg.SVMEpochs)
	return s, nil
}

// NewScorerWith builds a Scorer over an explicit panel.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewScorerWith(panel []Classifier, metricNames []string, folds int, logger zerolog.Logger) (*Scorer, error) {
	if len(panel) == 0 {
		return nil, fmt.Errorf("%w: empty classifier panel", models.ErrInvalidArgument)
	}
	if len(metricNames) == 0 {
		metricNames = []string{MetricMacroF1}
	}

	s := &Scorer{
		classifiers: panel,
		metricNames: append([]string(nil), metricNames...),
		folds:       folds,
		logger:      logger.With().Str("component", "classify").Logger(),
	}
	names := make([]string, len(panel))
	for i, c := range panel {
		names[i] = c.Name()
	}
	for _, name := range metricNames {
		m, err := LookupMetric(name)
		if err != nil {
			return nil, err
		}
		s.metrics = append(s.metrics, m)
	}
	s.fingerprint = fmt.Sprintf("folds=%d;metrics=%s;panel=%s",
		folds, strings.Join(metricNames, ","), strings.Join(names, ","))
	return s, nil
}

// Fingerprint identifies the scoring settings; equal fingerprints produce
// equal scores for equal inputs.
func (s *Scorer) Fingerprint() string {
	return s.fingerprint
}

// Evaluate min-max scales X and returns the fold-averaged metrics of every
// classifier.
func (s *Scorer) Evaluate(ctx context.Context, X [][]float64, y []int) (models.ClassifierScores, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("%w: %d samples but %d labels", models.ErrInvalidArgument, len(X), len(y))
	}
	numClasses := 0
	for _, label := range y {
		if label < 0 {
			return nil, fmt.Errorf("%w: negative class label %d", models.ErrInvalidArgument, label)
		}
		numClasses = max(numClasses, label+1)
	}
	return s.evaluate(ctx, X, y, numClasses)
}

// ScoreSelection evaluates the panel on the given feature columns of ds.
func (s *Scorer) ScoreSelection(ctx context.Context, ds *datasets.Dataset, features []int) (models.ClassifierScores, error) {
	X, err := ds.Select(features)
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, X, ds.Y, len(ds.Classes))
}

func (s *Scorer) evaluate(ctx context.Context, X [][]float64, y []int, numClasses int) (models.ClassifierScores, error) {
	X = datasets.MinMaxScale(X)

	folds, sparse, err := StratifiedFolds(y, numClasses, s.folds)
	if err != nil {
		return nil, err
	}
	if len(sparse) > 0 {
		s.logger.Debug().Ints("classes", sparse).Int("folds", s.folds).
			Msg("Classes with fewer members than folds")
	}

	scores := make(models.ClassifierScores, len(s.classifiers))
	for _, clf := range s.classifiers {
		start := time.Now()
		sums := make([]float64, len(s.metrics))
		evaluated := 0

		for f := range folds {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			trainX, trainY, testX, testY := split(X, y, folds, f)
			if len(testY) == 0 || len(trainY) == 0 {
				continue
			}

			model, err := clf.Fit(ctx, trainX, trainY, numClasses)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", clf.Name(), err)
			}
			pred := make([]int, len(testX))
			for i, x := range testX {
				pred[i] = model.Predict(x)
			}
			for m, metric := range s.metrics {
				sums[m] += metric(testY, pred)
			}
			evaluated++
		}
		metrics.RecordClassifier(clf.Name(), time.Since(start))

		result := make(map[string]float64, len(s.metrics))
		for m, name := range s.metricNames {
			if evaluated > 0 {
				result[name] = sums[m] / float64(evaluated)
			}
		}
		scores[clf.Name()] = result
	}
	return scores, nil
}
