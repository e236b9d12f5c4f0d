// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/table"
)

type flakyExporter struct {
	err     error
	exports int
	runs    int
}

func (f *flakyExporter) StartRun(context.Context, *Run) error  { f.runs++; return nil }
func (f *flakyExporter) FinishRun(context.Context, *Run) error { f.runs++; return nil }

func (f *flakyExporter) ExportTable(_ context.Context, _, _ string, t *table.Table) (int, error) {
	f.exports++
	if f.err != nil {
		return 0, f.err
	}
	return t.Len(), nil
}

func TestBreakerExporter_OpensAfterFailures(t *testing.T) {
	next := &flakyExporter{err: errors.New("database is locked")}
	b := NewBreakerExporter(next, 2, time.Hour, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := b.ExportTable(ctx, "run", "times", stabilityTable()); err == nil {
			t.Fatalf("export %d error = nil, want error", i)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %s, want open", b.State())
	}

	if _, err := b.ExportTable(ctx, "run", "times", stabilityTable()); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("export while open error = %v, want ErrOpenState", err)
	}
	if next.exports != 2 {
		t.Errorf("exports reaching the database = %d, want 2", next.exports)
	}

	// Run bookkeeping is not guarded.
	if err := b.FinishRun(ctx, &Run{ID: "run"}); err != nil {
		t.Errorf("FinishRun() error = %v", err)
	}
	if next.runs != 1 {
		t.Errorf("runs = %d, want 1", next.runs)
	}
}

func TestBreakerExporter_IgnoresCallerErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"cancelled", fmt.Errorf("begin export: %w", context.Canceled)},
		{"invalid name", fmt.Errorf("%w: table name %q", models.ErrInvalidArgument, "Bad")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBreakerExporter(&flakyExporter{err: tt.err}, 1, time.Hour, zerolog.Nop())
			for i := 0; i < 3; i++ {
				if _, err := b.ExportTable(context.Background(), "run", "times", stabilityTable()); !errors.Is(err, tt.err) {
					t.Fatalf("export %d error = %v, want %v", i, err, tt.err)
				}
			}
			if b.State() != gobreaker.StateClosed {
				t.Errorf("State() = %s, want closed", b.State())
			}
		})
	}
}

func TestBreakerExporter_PassesThrough(t *testing.T) {
	db := setupTestDB(t)
	b := NewBreakerExporter(db, 0, 0, zerolog.Nop())

	n, err := b.ExportTable(context.Background(), "run-1", "times", stabilityTable())
	if err != nil {
		t.Fatalf("ExportTable() error = %v", err)
	}
	if n != 2 {
		t.Errorf("ExportTable() rows = %d, want 2", n)
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("State() = %s, want closed", b.State())
	}
}
