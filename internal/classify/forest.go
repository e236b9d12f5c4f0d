// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package classify

import (
	"context"
	"math"
	"math/rand"
)

// ForestConfig contains configuration for the random forest.
type ForestConfig struct {
	Tree TreeConfig

	// Trees is the number of bagged trees.
	Trees int

	// Seed derives the bootstrap sample and feature draws of every tree.
	Seed int64
}

// DefaultForestConfig returns default random forest configuration.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Tree:  DefaultTreeConfig(),
		Trees: 100,
		Seed:  42,
	}
}

// RandomForest bags CART trees grown on bootstrap samples, each split
// choosing among sqrt(p) random features. Prediction is a majority vote.
type RandomForest struct {
	config ForestConfig
}

// NewRandomForest creates a random forest classifier.
func NewRandomForest(cfg ForestConfig) *RandomForest {
	if cfg.Trees <= 0 {
		cfg.Trees = DefaultForestConfig().Trees
	}
	if cfg.Tree.MinSamplesSplit < 2 {
		cfg.Tree.MinSamplesSplit = 2
	}
	return &RandomForest{config: cfg}
}

// Name returns "RandomForest".
func (r *RandomForest) Name() string { return "RandomForest" }

// Fit grows the forest.
func (r *RandomForest) Fit(ctx context.Context, X [][]float64, y []int, numClasses int) (Model, error) {
	if len(X) == 0 {
		return constantModel(0), nil
	}

	maxFeatures := max(1, int(math.Sqrt(float64(len(X[0])))))
	forest := &forestModel{trees: make([]*node, r.config.Trees), numClasses: numClasses}

	for t := 0; t < r.config.Trees; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rng := rand.New(rand.NewSource(r.config.Seed + int64(t))) //nolint:gosec // reproducible bagging, not security

		sample := make([]int, len(X))
		for i := range sample {
			sample[i] = rng.Intn(len(X))
		}

		b := &treeBuilder{
			X: X, y: y, numClasses: numClasses, config: r.config.Tree,
			maxFeatures: maxFeatures, rng: rng,
		}
		forest.trees[t] = b.grow(sample, 0)
	}
	return forest, nil
}

type forestModel struct {
	trees      []*node
	numClasses int
}

func (f *forestModel) Predict(x []float64) int {
	votes := make([]int, f.numClasses)
	for _, t := range f.trees {
		votes[t.Predict(x)]++
	}
	return argmax(votes)
}
