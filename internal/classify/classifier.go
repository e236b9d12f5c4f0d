// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

// Package classify scores a feature selection by how well a fixed panel of
// classifiers predicts the class label from the selected columns alone.
//
// # Panel
//
//   - SupportVectorMachine: one-vs-rest linear SVM trained with Pegasos
//   - DecisionTree: CART with Gini impurity
//   - RandomForest: bagged CART trees with sqrt(p) candidate features per split
//   - NaiveBayes: Gaussian naive Bayes
//   - ZeroR: majority class baseline
//
// # Protocol
//
// The matrix handed to Evaluate is min-max scaled, split into stratified
// folds and every classifier is fitted on k-1 folds and scored on the
// remaining one. Reported metrics are the mean over folds.
//
// # Thread Safety
//
// Classifiers hold only their configuration and fitted models are immutable,
// so a Scorer may be shared by every worker of a pool. Randomness is derived
// from the configured seed, never from a shared source.
package classify

import (
	"context"
)

// Model is a fitted classifier.
type Model interface {
	// Predict returns the class index of one sample.
	Predict(x []float64) int
}

// Classifier fits a Model to a training fold.
type Classifier interface {
	// Name is the classifier prefix of the score columns.
	Name() string

	// Fit trains on X and y, where labels are in [0, numClasses).
	Fit(ctx context.Context, X [][]float64, y []int, numClasses int) (Model, error)
}

// majority returns the most frequent label, the lowest index on ties.
func majority(y []int, numClasses int) int {
	counts := make([]int, numClasses)
	for _, label := range y {
		counts[label]++
	}
	best := 0
	for c := 1; c < numClasses; c++ {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

// constantModel always predicts one class.
type constantModel int

func (m constantModel) Predict(_ []float64) int { return int(m) }

// ZeroR predicts the majority class of the training fold.
type ZeroR struct{}

// Name returns "ZeroR".
func (ZeroR) Name() string { return "ZeroR" }

// Fit finds the majority class.
func (ZeroR) Fit(_ context.Context, _ [][]float64, y []int, numClasses int) (Model, error) {
	return constantModel(majority(y, numClasses)), nil
}
