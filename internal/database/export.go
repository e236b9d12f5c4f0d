// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package database

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/featstab/internal/metrics"
	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/table"
)

// tableNamePattern restricts exported table names to plain identifiers.
var tableNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// integerColumns are stored as BIGINT; every other numeric column is DOUBLE.
var integerColumns = map[string]bool{
	models.ColNumFeatures: true,
	models.ColNumSelected: true,
	models.ColFeatures:    true,
	models.ColSelected:    true,
	models.ColFeats:       true,
	models.ColExecutions:  true,
}

// textColumns are always VARCHAR. Their cells are identifiers that may look
// numeric in one run and not in the next.
var textColumns = map[string]bool{
	models.ColName:        true,
	models.ColDataset:     true,
	models.ColDatasetName: true,
	models.ColResultType:  true,
	models.ColSampling:    true,
	models.ColValues:      true,
}

type columnType string

const (
	typeBigint  columnType = "BIGINT"
	typeDouble  columnType = "DOUBLE"
	typeVarchar columnType = "VARCHAR"
)

// Run describes one evaluation run in the runs table.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	ResultsPath  string
	Tables       int
	FailedStages []string
}

// StartRun inserts the run row.
func (db *DB) StartRun(ctx context.Context, run *Run) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, results_path) VALUES (?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.ResultsPath)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun records the outcome of a run started with StartRun.
func (db *DB) FinishRun(ctx context.Context, run *Run) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, tables = ?, failed_stages = ? WHERE run_id = ?`,
		run.FinishedAt.UTC(), run.Tables, strings.Join(run.FailedStages, ","), run.ID)
	if err != nil {
		return fmt.Errorf("update run %s: %w", run.ID, err)
	}
	return nil
}

// ExportTable appends the rows of t to the DuckDB table name, tagged with
// runID. The table is created on first use and gains columns as new ones
// appear. Empty cells are stored as NULL. It returns the number of rows
// written.
func (db *DB) ExportTable(ctx context.Context, runID, name string, t *table.Table) (n int, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBExport(name, time.Since(start), err)
	}()

	if !tableNamePattern.MatchString(name) {
		return 0, fmt.Errorf("%w: table name %q", models.ErrInvalidArgument, name)
	}
	types := inferTypes(t)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin export of %s: %w", name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() // Explicitly ignore error - the export error is reported
		}
	}()

	if _, err = tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (run_id VARCHAR NOT NULL)`, quoteIdent(name))); err != nil {
		return 0, fmt.Errorf("create table %s: %w", name, err)
	}
	for _, col := range t.Columns {
		stmt := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s`, quoteIdent(name), quoteIdent(col), types[col])
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("add column %s.%s: %w", name, col, err)
		}
	}

	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, "run_id")
	for _, col := range t.Columns {
		cols = append(cols, quoteIdent(col))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	insert, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteIdent(name), strings.Join(cols, ", "), placeholders))
	if err != nil {
		return 0, fmt.Errorf("prepare insert into %s: %w", name, err)
	}
	defer insert.Close()

	args := make([]any, len(cols))
	for i, row := range t.Rows {
		args[0] = runID
		for j, col := range t.Columns {
			args[j+1] = cellValue(row[col], types[col])
		}
		if _, err = insert.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d into %s: %w", i+1, name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit export of %s: %w", name, err)
	}

	db.logger.Debug().Str("table", name).Int("rows", t.Len()).Str("run_id", runID).Msg("Exported table")
	return t.Len(), nil
}

// inferTypes picks a column type from the cells: provenance columns are
// VARCHAR, known count columns are BIGINT, columns whose non-empty cells all
// parse as numbers are DOUBLE and everything else is VARCHAR. A column with only empty cells is DOUBLE, the
// type of an absent metric.
func inferTypes(t *table.Table) map[string]columnType {
	types := make(map[string]columnType, len(t.Columns))
	for _, col := range t.Columns {
		if textColumns[col] {
			types[col] = typeVarchar
			continue
		}
		if integerColumns[col] {
			types[col] = typeBigint
			continue
		}
		types[col] = typeDouble
		for _, row := range t.Rows {
			cell := row[col]
			if cell == "" {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				types[col] = typeVarchar
				break
			}
		}
	}
	return types
}

func cellValue(cell string, typ columnType) any {
	if cell == "" {
		return nil
	}
	switch typ {
	case typeBigint:
		if v, err := strconv.ParseInt(cell, 10, 64); err == nil {
			return v
		}
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			return int64(v)
		}
	case typeDouble:
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			return v
		}
	}
	return cell
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
