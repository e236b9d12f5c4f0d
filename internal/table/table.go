// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

// Package table implements the flat tabular exchange format used for result
// rows and every derived output table.
//
// A Table is an ordered list of columns and a list of rows keyed by column
// name. Cells are strings; an empty cell means the value is absent. Numeric
// helpers format floats with the shortest representation that parses back
// to the same value, so a written table reloads field-for-field.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Row is one record keyed by column name.
type Row map[string]string

// Table is an in-memory collection of rows sharing a column layout.
type Table struct {
	Columns []string
	Rows    []Row
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Append adds a row. Keys that are not yet columns are added to the layout
// in sorted order so appends stay deterministic.
func (t *Table) Append(row Row) {
	missing := make([]string, 0)
	for key := range row {
		if !t.HasColumn(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		t.Columns = append(t.Columns, missing...)
	}
	t.Rows = append(t.Rows, row)
}

// HasColumn reports whether name is part of the layout.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Filter returns a new table holding the rows whose field equals value.
// Rows are shared with t, not copied.
func (t *Table) Filter(field, value string) *Table {
	out := New(t.Columns...)
	for _, row := range t.Rows {
		if row[field] == value {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Concat stacks tables vertically. Columns are the union of all layouts in
// first-seen order; rows missing a column read as absent.
func Concat(tables ...*Table) *Table {
	out := &Table{}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			if !out.HasColumn(c) {
				out.Columns = append(out.Columns, c)
			}
		}
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out
}

// ReadCSV parses a table with a header line.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := New(header...)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("line %d has %d fields, header has %d", line, len(record), len(header))
		}

		row := make(Row, len(header))
		for i, col := range header {
			row[col] = record[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteCSV writes the table including its header line.
func (t *Table) WriteCSV(w io.Writer) error {
	return t.writeCSV(w, true)
}

// WriteCSVRows writes the rows without a header, for appending to an
// existing file.
func (t *Table) WriteCSVRows(w io.Writer) error {
	return t.writeCSV(w, false)
}

func (t *Table) writeCSV(w io.Writer, header bool) error {
	writer := csv.NewWriter(w)
	if header {
		if err := writer.Write(t.Columns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j, col := range t.Columns {
			record[j] = row[col]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// FormatFloat formats v with the shortest round-trip representation.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FormatInt formats an integer cell.
func FormatInt(v int) string {
	return strconv.Itoa(v)
}

// Float parses the named cell. ok is false when the cell is absent.
func (r Row) Float(col string) (v float64, ok bool, err error) {
	s := r[col]
	if s == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("column %s: %w", col, err)
	}
	return v, true, nil
}

// Int parses the named cell as an integer. Integral values written as
// floats ("10.0") are accepted.
func (r Row) Int(col string) (int, error) {
	s := r[col]
	if s == "" {
		return 0, fmt.Errorf("column %s is empty", col)
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("column %s: %q is not an integer", col, s)
	}
	return int(f), nil
}
