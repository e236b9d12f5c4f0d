// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package datasets

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"

	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/table"
)

// Dataset is a labelled feature matrix. It is never mutated after loading
// and may be shared between goroutines.
type Dataset struct {
	Name    string
	X       [][]float64
	Y       []int
	Classes []string
	Columns []string
}

// NumFeatures returns the number of feature columns.
func (d *Dataset) NumFeatures() int {
	return len(d.Columns)
}

// NumSamples returns the number of rows.
func (d *Dataset) NumSamples() int {
	return len(d.X)
}

// Select returns a new matrix holding the given feature columns in the
// given order.
func (d *Dataset) Select(features []int) ([][]float64, error) {
	for _, f := range features {
		if f < 0 || f >= d.NumFeatures() {
			return nil, fmt.Errorf("%w: feature %d outside [0, %d) for dataset %s",
				models.ErrInvalidArgument, f, d.NumFeatures(), d.Name)
		}
	}

	out := make([][]float64, len(d.X))
	for i, row := range d.X {
		projected := make([]float64, len(features))
		for j, f := range features {
			projected[j] = row[f]
		}
		out[i] = projected
	}
	return out, nil
}

// ReadOptions controls how a dataset table becomes a feature matrix.
type ReadOptions struct {
	LabelColumn string
	DropColumns []string
	Normalize   bool
}

// Read parses a dataset table. Every column other than the label and the
// dropped ones must be numeric. Class labels are encoded in sorted order.
func Read(name string, r io.Reader, opts ReadOptions) (*Dataset, error) {
	t, err := table.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%w: dataset %s: %v", models.ErrInvalidFormat, name, err)
	}
	if !t.HasColumn(opts.LabelColumn) {
		return nil, fmt.Errorf("%w: dataset %s has no label column %q", models.ErrInvalidFormat, name, opts.LabelColumn)
	}
	if t.Len() == 0 {
		return nil, fmt.Errorf("%w: dataset %s has no samples", models.ErrEmptyResult, name)
	}

	ds := &Dataset{Name: name}
	for _, col := range t.Columns {
		if col == opts.LabelColumn || slices.Contains(opts.DropColumns, col) {
			continue
		}
		ds.Columns = append(ds.Columns, col)
	}

	labels := make(map[string]int)
	for _, row := range t.Rows {
		labels[row[opts.LabelColumn]] = 0
	}
	ds.Classes = make([]string, 0, len(labels))
	for label := range labels {
		ds.Classes = append(ds.Classes, label)
	}
	sort.Strings(ds.Classes)
	for i, label := range ds.Classes {
		labels[label] = i
	}

	ds.X = make([][]float64, t.Len())
	ds.Y = make([]int, t.Len())
	for i, row := range t.Rows {
		values := make([]float64, len(ds.Columns))
		for j, col := range ds.Columns {
			v, err := strconv.ParseFloat(row[col], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: dataset %s line %d column %s: %q is not numeric",
					models.ErrInvalidFormat, name, i+2, col, row[col])
			}
			values[j] = v
		}
		ds.X[i] = values
		ds.Y[i] = labels[row[opts.LabelColumn]]
	}

	if opts.Normalize {
		ds.X = MinMaxScale(ds.X)
	}
	return ds, nil
}

// MinMaxScale returns a copy of X with every column scaled into [0, 1].
// Constant columns become 0.
func MinMaxScale(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	if len(X) == 0 {
		return out
	}

	cols := len(X[0])
	lo := make([]float64, cols)
	hi := make([]float64, cols)
	copy(lo, X[0])
	copy(hi, X[0])
	for _, row := range X[1:] {
		for j, v := range row {
			lo[j] = min(lo[j], v)
			hi[j] = max(hi[j], v)
		}
	}

	for i, row := range X {
		scaled := make([]float64, cols)
		for j, v := range row {
			if span := hi[j] - lo[j]; span > 0 {
				scaled[j] = (v - lo[j]) / span
			}
		}
		out[i] = scaled
	}
	return out
}
