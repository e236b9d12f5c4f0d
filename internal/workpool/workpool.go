// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

// Package workpool runs independent units of work on a bounded number of
// goroutines and collects their results in input order.
package workpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every item and returns the results in item order.
//
// With workers <= 1 the items are processed sequentially on the calling
// goroutine. Otherwise at most workers calls run at once. The first error
// cancels the context handed to the remaining calls and is returned; the
// partial results are discarded.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))

	if workers <= 1 {
		for i, item := range items {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r, err := fn(ctx, item)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
		return results, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range items {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			r, err := fn(gCtx, item)
			if err != nil {
				return err
			}
			// Each index is owned by exactly one goroutine
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
