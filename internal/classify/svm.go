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

// SVMConfig contains configuration for the linear SVM.
type SVMConfig struct {
	// Lambda is the regularization strength. 0 uses 1/n for a training fold
	// of n samples, the equivalent of a soft-margin C of 1.
	Lambda float64

	// Epochs is the number of passes over the training fold.
	Epochs int

	// Seed orders the stochastic updates.
	Seed int64
}

// DefaultSVMConfig returns default SVM configuration.
func DefaultSVMConfig() SVMConfig {
	return SVMConfig{
		Lambda: 0,
		Epochs: 20,
		Seed:   42,
	}
}

// SupportVectorMachine is a one-vs-rest linear SVM trained with Pegasos
// (Shalev-Shwartz et al., 2007). A constant input is appended to every
// sample so the bias is learned as an ordinary weight.
type SupportVectorMachine struct {
	config SVMConfig
}

// NewSupportVectorMachine creates a linear SVM.
func NewSupportVectorMachine(cfg SVMConfig) *SupportVectorMachine {
	if cfg.Lambda < 0 {
		cfg.Lambda = 0
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = DefaultSVMConfig().Epochs
	}
	return &SupportVectorMachine{config: cfg}
}

// Name returns "SupportVectorMachine".
func (s *SupportVectorMachine) Name() string { return "SupportVectorMachine" }

// Fit trains one binary SVM per class present in y.
func (s *SupportVectorMachine) Fit(ctx context.Context, X [][]float64, y []int, numClasses int) (Model, error) {
	if len(X) == 0 {
		return constantModel(0), nil
	}

	present := make([]bool, numClasses)
	distinct := 0
	for _, label := range y {
		if !present[label] {
			present[label] = true
			distinct++
		}
	}
	if distinct < 2 {
		return constantModel(majority(y, numClasses)), nil
	}

	dim := len(X[0]) + 1
	model := &linearModel{weights: make([][]float64, numClasses), present: present}
	for c := 0; c < numClasses; c++ {
		if !present[c] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		model.weights[c] = s.pegasos(X, y, c, dim)
	}
	return model, nil
}

// pegasos trains class c against the rest.
func (s *SupportVectorMachine) pegasos(X [][]float64, y []int, c, dim int) []float64 {
	lambda := s.config.Lambda
	if lambda == 0 {
		lambda = 1 / float64(len(X))
	}
	radius := 1 / math.Sqrt(lambda)
	w := make([]float64, dim)
	rng := rand.New(rand.NewSource(s.config.Seed + int64(c))) //nolint:gosec // reproducible sample order, not security

	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}

	t := 0
	for epoch := 0; epoch < s.config.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, i := range order {
			t++
			eta := 1 / (lambda * float64(t))
			target := -1.0
			if y[i] == c {
				target = 1
			}

			margin := target * dot(w, X[i])
			scale := 1 - eta*lambda
			for j := range w {
				w[j] *= scale
			}
			if margin < 1 {
				for j, v := range X[i] {
					w[j] += eta * target * v
				}
				w[dim-1] += eta * target
			}

			// Project onto the ball of radius 1/sqrt(lambda)
			if norm := math.Sqrt(squaredNorm(w)); norm > radius {
				f := radius / norm
				for j := range w {
					w[j] *= f
				}
			}
		}
	}
	return w
}

// dot returns w·(x, 1).
func dot(w, x []float64) float64 {
	var sum float64
	for j, v := range x {
		sum += w[j] * v
	}
	return sum + w[len(w)-1]
}

func squaredNorm(w []float64) float64 {
	var sum float64
	for _, v := range w {
		sum += v * v
	}
	return sum
}

type linearModel struct {
	weights [][]float64
	present []bool
}

func (m *linearModel) Predict(x []float64) int {
	best, bestScore := 0, math.Inf(-1)
	for c, w := range m.weights {
		if !m.present[c] {
			continue
		}
		if score := dot(w, x); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}
