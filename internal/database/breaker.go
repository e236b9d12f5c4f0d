// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/featstab/internal/metrics"
	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/table"
)

const exportBreakerName = "duckdb-export"

// TableExporter is the export surface of DB.
type TableExporter interface {
	StartRun(ctx context.Context, run *Run) error
	FinishRun(ctx context.Context, run *Run) error
	ExportTable(ctx context.Context, runID, name string, t *table.Table) (int, error)
}

// BreakerExporter guards table exports with a circuit breaker. After
// consecutive failures further exports of the run fail fast with
// gobreaker.ErrOpenState instead of opening a transaction each.
type BreakerExporter struct {
	next TableExporter
	cb   *gobreaker.CircuitBreaker[int]
}

// NewBreakerExporter wraps next. The circuit opens after maxFailures
// consecutive failed exports and probes again after timeout. Non-positive
// values fall back to 3 failures and one minute.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewBreakerExporter(next TableExporter, maxFailures uint32, timeout time.Duration, logger zerolog.Logger) *BreakerExporter {
	if maxFailures == 0 {
		maxFailures = 3
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	logger = logger.With().Str("component", "database").Str("breaker", exportBreakerName).Logger()

	metrics.CircuitBreakerState.WithLabelValues(exportBreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:        exportBreakerName,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// Cancellation and rejected table names say nothing about the database.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, models.ErrInvalidArgument)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("Export circuit breaker state transition")
			metrics.RecordBreakerTransition(name, from.String(), to.String(), stateValue(to))
		},
	})

	return &BreakerExporter{next: next, cb: cb}
}

// StartRun passes through; run bookkeeping is not guarded.
func (b *BreakerExporter) StartRun(ctx context.Context, run *Run) error {
	return b.next.StartRun(ctx, run)
}

// FinishRun passes through.
func (b *BreakerExporter) FinishRun(ctx context.Context, run *Run) error {
	return b.next.FinishRun(ctx, run)
}

// ExportTable exports t through the circuit breaker.
func (b *BreakerExporter) ExportTable(ctx context.Context, runID, name string, t *table.Table) (int, error) {
	n, err := b.cb.Execute(func() (int, error) {
		return b.next.ExportTable(ctx, runID, name, t)
	})

	switch {
	case err == nil:
		metrics.RecordBreakerRequest(exportBreakerName, "success")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordBreakerRequest(exportBreakerName, "rejected")
	default:
		metrics.RecordBreakerRequest(exportBreakerName, "failure")
	}
	return n, err
}

// State returns the current breaker state.
func (b *BreakerExporter) State() gobreaker.State {
	return b.cb.State()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
