// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package classify

import (
	"context"
	"math/rand"
	"sort"
)

// TreeConfig contains configuration for CART trees.
type TreeConfig struct {
	// MaxDepth bounds the tree depth. 0 grows until leaves are pure.
	MaxDepth int

	// MinSamplesSplit is the smallest node that is split further.
	MinSamplesSplit int
}

// DefaultTreeConfig returns default tree configuration.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		MaxDepth:        0,
		MinSamplesSplit: 2,
	}
}

// DecisionTree is a CART classifier that splits on the Gini impurity.
type DecisionTree struct {
	config TreeConfig
}

// NewDecisionTree creates a decision tree classifier.
func NewDecisionTree(cfg TreeConfig) *DecisionTree {
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}
	return &DecisionTree{config: cfg}
}

// Name returns "DecisionTree".
func (d *DecisionTree) Name() string { return "DecisionTree" }

// Fit grows a tree over every feature.
func (d *DecisionTree) Fit(ctx context.Context, X [][]float64, y []int, numClasses int) (Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := &treeBuilder{X: X, y: y, numClasses: numClasses, config: d.config}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	return b.grow(idx, 0), nil
}

// node is a tree node. Leaves have left == nil.
type node struct {
	feature     int
	threshold   float64
	left, right *node
	class       int
}

func (n *node) Predict(x []float64) int {
	for n.left != nil {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.class
}

type treeBuilder struct {
	X          [][]float64
	y          []int
	numClasses int
	config     TreeConfig

	// maxFeatures > 0 samples that many candidate features per split.
	maxFeatures int
	rng         *rand.Rand
}

func (b *treeBuilder) grow(idx []int, depth int) *node {
	counts := make([]int, b.numClasses)
	for _, i := range idx {
		counts[b.y[i]]++
	}
	leaf := &node{class: argmax(counts)}

	if len(idx) < b.config.MinSamplesSplit || gini(counts, len(idx)) == 0 {
		return leaf
	}
	if b.config.MaxDepth > 0 && depth >= b.config.MaxDepth {
		return leaf
	}

	feature, threshold, ok := b.bestSplit(idx, counts)
	if !ok {
		return leaf
	}

	var left, right []int
	for _, i := range idx {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.grow(left, depth+1),
		right:     b.grow(right, depth+1),
		class:     leaf.class,
	}
}

// bestSplit returns the split minimizing the weighted Gini impurity of the
// children. Thresholds are midpoints between consecutive distinct values.
func (b *treeBuilder) bestSplit(idx []int, counts []int) (int, float64, bool) {
	n := len(idx)
	bestScore := gini(counts, n)
	bestFeature, bestThreshold, found := -1, 0.0, false

	sorted := make([]int, n)
	leftCounts := make([]int, b.numClasses)
	rightCounts := make([]int, b.numClasses)

	for _, f := range b.candidates() {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, c int) bool { return b.X[sorted[a]][f] < b.X[sorted[c]][f] })

		for c := range leftCounts {
			leftCounts[c] = 0
			rightCounts[c] = counts[c]
		}

		for pos := 0; pos < n-1; pos++ {
			label := b.y[sorted[pos]]
			leftCounts[label]++
			rightCounts[label]--

			lo, hi := b.X[sorted[pos]][f], b.X[sorted[pos+1]][f]
			if lo == hi {
				continue
			}
			nl, nr := pos+1, n-pos-1
			score := (float64(nl)*gini(leftCounts, nl) + float64(nr)*gini(rightCounts, nr)) / float64(n)
			if score < bestScore-1e-12 {
				bestScore = score
				bestFeature = f
				bestThreshold = lo + (hi-lo)/2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

// candidates returns the features considered at one split.
func (b *treeBuilder) candidates() []int {
	p := len(b.X[0])
	if b.maxFeatures <= 0 || b.maxFeatures >= p {
		all := make([]int, p)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return b.rng.Perm(p)[:b.maxFeatures]
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		impurity -= p * p
	}
	return impurity
}

func argmax(counts []int) int {
	best := 0
	for c := 1; c < len(counts); c++ {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}
