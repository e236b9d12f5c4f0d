// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

// Package scoring measures the classification quality of recorded feature
// selections.
//
// ScoreAll loads the subset, rank and weights records independently. Subset
// records are scored once on their recorded indices; rank and weights
// records are scored on their top-k features for every cutoff k shorter
// than the recorded encoding. Each scored selection becomes one
// models.ScoreRecord whose Scores hold the flattened "<classifier>_<metric>"
// columns. Summarize averages them per (name, selected).
package scoring
