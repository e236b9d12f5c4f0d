// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package models

import "sort"

// ClassifierScores maps classifier name to metric name to fold-averaged value.
type ClassifierScores map[string]map[string]float64

// Flatten returns the scores keyed "<classifier>_<metric>", the column names
// used by the scoring tables.
func (s ClassifierScores) Flatten() map[string]float64 {
	flat := make(map[string]float64)
	for classifier, metrics := range s {
		for metric, value := range metrics {
			flat[classifier+"_"+metric] = value
		}
	}
	return flat
}

// Scoring table provenance columns.
const (
	ColDataset  = "dataset"
	ColFeatures = "features"
	ColSelected = "selected"
)

// ScoreRecord is the quality of one scored selection.
type ScoreRecord struct {
	Name           string
	Dataset        string
	Features       int
	Selected       int
	Sampling       Sampling
	ProcessingTime float64
	Values         string
	Scores         map[string]float64
}

// ScoreSummary is the mean quality of an algorithm at one selection size.
type ScoreSummary struct {
	Name     string
	Selected int
	Means    map[string]float64
}

// ScoreColumns returns the sorted union of the score columns in records.
func ScoreColumns(records []ScoreRecord) []string {
	seen := make(map[string]struct{})
	for i := range records {
		for col := range records[i].Scores {
			seen[col] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
