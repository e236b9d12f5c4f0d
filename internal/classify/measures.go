// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package classify

import (
	"fmt"
	"sort"

	"github.com/tomtom215/featstab/internal/models"
)

// Metric scores predictions against the truth of one fold.
type Metric func(truth, pred []int) float64

// Metric names.
const (
	MetricMacroF1    = "macro_f1"
	MetricAccuracy   = "accuracy"
	MetricWeightedF1 = "weighted_f1"
)

var registry = map[string]Metric{
	MetricMacroF1:    MacroF1,
	MetricAccuracy:   Accuracy,
	MetricWeightedF1: WeightedF1,
}

// MetricNames returns the registered metric names in sorted order.
func MetricNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupMetric returns the named metric.
func LookupMetric(name string) (Metric, error) {
	m, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: metric %q, allowed values are %v", models.ErrInvalidArgument, name, MetricNames())
	}
	return m, nil
}

// Accuracy is the fraction of correct predictions.
func Accuracy(truth, pred []int) float64 {
	if len(truth) == 0 {
		return 0
	}
	correct := 0
	for i := range truth {
		if truth[i] == pred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(truth))
}

// MacroF1 is the unweighted mean F1 over every label present in truth or
// pred. A label with no true positives, false positives or false negatives
// scores 0.
func MacroF1(truth, pred []int) float64 {
	stats := labelStats(truth, pred)
	if len(stats) == 0 {
		return 0
	}
	var sum float64
	for _, s := range stats {
		sum += s.f1()
	}
	return sum / float64(len(stats))
}

// WeightedF1 is the mean F1 over labels weighted by their support in truth.
func WeightedF1(truth, pred []int) float64 {
	if len(truth) == 0 {
		return 0
	}
	var sum float64
	for _, s := range labelStats(truth, pred) {
		sum += s.f1() * float64(s.tp+s.fn)
	}
	return sum / float64(len(truth))
}

type confusion struct {
	tp, fp, fn int
}

func (c confusion) f1() float64 {
	den := 2*c.tp + c.fp + c.fn
	if den == 0 {
		return 0
	}
	return 2 * float64(c.tp) / float64(den)
}

func labelStats(truth, pred []int) map[int]confusion {
	stats := make(map[int]confusion)
	for i := range truth {
		t, p := truth[i], pred[i]
		if t == p {
			s := stats[t]
			s.tp++
			stats[t] = s
			continue
		}
		s := stats[t]
		s.fn++
		stats[t] = s
		s = stats[p]
		s.fp++
		stats[p] = s
	}
	return stats
}
