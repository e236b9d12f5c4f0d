// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package classify

import (
	"context"
	"math"
)

// varSmoothing is the fraction of the largest feature variance added to
// every class variance.
const varSmoothing = 1e-9

// NaiveBayes is a Gaussian naive Bayes classifier.
type NaiveBayes struct{}

// Name returns "NaiveBayes".
func (NaiveBayes) Name() string { return "NaiveBayes" }

// Fit estimates per-class priors, means and variances. Classes absent from
// the training fold are never predicted.
func (NaiveBayes) Fit(ctx context.Context, X [][]float64, y []int, numClasses int) (Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(X) == 0 {
		return constantModel(0), nil
	}

	p := len(X[0])
	m := &bayesModel{
		logPrior: make([]float64, numClasses),
		mean:     make([][]float64, numClasses),
		variance: make([][]float64, numClasses),
	}

	counts := make([]int, numClasses)
	for c := range m.mean {
		m.mean[c] = make([]float64, p)
		m.variance[c] = make([]float64, p)
	}
	for i, row := range X {
		c := y[i]
		counts[c]++
		for j, v := range row {
			m.mean[c][j] += v
		}
	}
	for c := range m.mean {
		if counts[c] == 0 {
			m.logPrior[c] = math.Inf(-1)
			continue
		}
		m.logPrior[c] = math.Log(float64(counts[c]) / float64(len(X)))
		for j := range m.mean[c] {
			m.mean[c][j] /= float64(counts[c])
		}
	}
	for i, row := range X {
		c := y[i]
		for j, v := range row {
			d := v - m.mean[c][j]
			m.variance[c][j] += d * d
		}
	}

	epsilon := varSmoothing * maxVariance(X)
	if epsilon == 0 {
		epsilon = varSmoothing
	}
	for c := range m.variance {
		for j := range m.variance[c] {
			if counts[c] > 0 {
				m.variance[c][j] /= float64(counts[c])
			}
			m.variance[c][j] += epsilon
		}
	}
	return m, nil
}

// maxVariance returns the largest column variance of X.
func maxVariance(X [][]float64) float64 {
	n := float64(len(X))
	var best float64
	for j := range X[0] {
		var mean float64
		for _, row := range X {
			mean += row[j]
		}
		mean /= n
		var v float64
		for _, row := range X {
			d := row[j] - mean
			v += d * d
		}
		best = math.Max(best, v/n)
	}
	return best
}

type bayesModel struct {
	logPrior []float64
	mean     [][]float64
	variance [][]float64
}

func (m *bayesModel) Predict(x []float64) int {
	best, bestScore := 0, math.Inf(-1)
	for c, prior := range m.logPrior {
		if math.IsInf(prior, -1) {
			continue
		}
		score := prior
		for j, v := range x {
			variance := m.variance[c][j]
			d := v - m.mean[c][j]
			score -= 0.5*math.Log(2*math.Pi*variance) + d*d/(2*variance)
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}
