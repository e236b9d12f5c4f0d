// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

/*
Package stability measures how consistently feature-selection methods select
features across repeated executions.

Records are partitioned into result groups keyed by (name, dataset_name,
num_selected). Each group is specialized by its encoding:

  - subset: jaccard, hamming, dice and kuncheva on the recorded subsets,
    evaluated once at the declared selection size.
  - rank: the subset measures plus canberra and spearman on the ranks
    truncated at every cutoff k <= num_selected.
  - weights: the rank measures on the rank derived from the weights, plus
    pearson and canberra on the weight vectors with all but the top-k
    weights zeroed. The weight-based canberra replaces the rank-based one.

A measure that does not apply to an encoding is absent from the row, never
zero. Groups are evaluated on a bounded worker pool (see package workpool);
the first failing group aborts the run.

Ties between equal weights are broken by ascending feature index, so the
derived ranks and every measure built on them are reproducible.
*/
package stability
