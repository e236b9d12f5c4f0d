// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package models

// Metric names a consistency measure.
type Metric string

const (
	MetricJaccard  Metric = "jaccard"
	MetricHamming  Metric = "hamming"
	MetricDice     Metric = "dice"
	MetricKuncheva Metric = "kuncheva"
	MetricCanberra Metric = "canberra"
	MetricSpearman Metric = "spearman"
	MetricPearson  Metric = "pearson"
)

// Metrics returns every consistency measure in table column order.
func Metrics() []Metric {
	return []Metric{
		MetricJaccard, MetricHamming, MetricDice, MetricKuncheva,
		MetricCanberra, MetricSpearman, MetricPearson,
	}
}

// MetricValues holds the measures computed for one row. A measure that does
// not apply to the row's encoding is absent from the map, never zero.
type MetricValues map[Metric]float64

// Merge copies every value of o into v, replacing existing entries.
func (v MetricValues) Merge(o MetricValues) {
	for m, value := range o {
		v[m] = value
	}
}

// Stability table provenance columns.
const (
	ColFeats      = "feats"
	ColExecutions = "executions"
)

// StabilityRecord is the consistency of one result group at one cutoff.
type StabilityRecord struct {
	Name       string
	Dataset    string
	Feats      int
	Selected   int
	Executions int
	Metrics    MetricValues
}

// StabilitySummary averages stability rows of an algorithm at one cutoff
// across datasets.
type StabilitySummary struct {
	Name       string
	Selected   int
	Executions int
	Metrics    MetricValues
}

// ExecutionTimes summarizes processing time of one configuration.
type ExecutionTimes struct {
	Name        string
	Dataset     string
	ResultType  ResultType
	Sampling    Sampling
	Executions  int
	MeanSeconds float64
	MinSeconds  float64
	MaxSeconds  float64
}
