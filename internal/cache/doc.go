// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

/*
Package cache stores classifier scores across runs.

Scoring a selection cross-validates the whole classifier panel, which
dominates the run time of an evaluation. The same (dataset, features)
selection recurs across executions and runs, so ScoreCache keeps the
fold-averaged scores in BadgerDB keyed by the scorer fingerprint, the dataset
name and the selected feature indices. A generic LRU holds the hot entries in
memory.

Usage:

	c, err := cache.Open(&cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	key := cache.Key(scorer.Fingerprint(), "colon", []int{3, 7, 1})
	if scores, ok, err := c.Get(key); err == nil && ok {
		return scores, nil
	}

A changed fingerprint (folds, seed, metrics or panel settings) yields new keys,
so stale entries are never served. Dataset file contents are not part of the
key; run `featstab cache purge` after changing a dataset in place.
*/
package cache
