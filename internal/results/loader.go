// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

// Package results reads and writes result tables.
//
// A results location is either a single .csv file or a directory tree whose
// .csv files are concatenated. Loading returns a *table.Table; DecodeRecords
// validates the rows against the result row schema and turns them into
// models.Record values.
package results

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/table"
)

// Extension is the file extension of result tables.
const Extension = ".csv"

// LoadAll loads every row stored at location.
func LoadAll(location string) (*table.Table, error) {
	info, err := os.Stat(location)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: results location %q does not exist", models.ErrNotFound, location)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", location, err)
	}

	if !info.IsDir() {
		if !strings.EqualFold(filepath.Ext(location), Extension) {
			return nil, fmt.Errorf("%w: %q should be either a directory containing csv files or a csv file",
				models.ErrInvalidFormat, location)
		}
		return readFile(location)
	}

	files, err := tableFiles(location)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no results found at %q", models.ErrInvalidFormat, location)
	}

	tables := make([]*table.Table, 0, len(files))
	for _, path := range files {
		t, err := readFile(path)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return table.Concat(tables...), nil
}

// tableFiles walks dir and returns its .csv files in lexical order.
func tableFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), Extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func readFile(path string) (*table.Table, error) {
	f, err := os.Open(path) //nolint:gosec // path is a configured results location
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := table.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrInvalidFormat, path, err)
	}
	return t, nil
}

// LoadBy loads location and keeps the rows whose field equals value. When
// allowed is non-empty, value is validated against it before anything is
// read.
func LoadBy(location, field, value string, allowed []string) (*table.Table, error) {
	if len(allowed) > 0 && !slices.Contains(allowed, value) {
		return nil, fmt.Errorf("%w: %s %q, allowed values are [%s]",
			models.ErrInvalidArgument, field, value, strings.Join(allowed, ", "))
	}

	all, err := LoadAll(location)
	if err != nil {
		return nil, err
	}

	filtered := all.Filter(field, value)
	if filtered.Len() == 0 {
		return nil, fmt.Errorf("%w: no results found for %s %q", models.ErrEmptyResult, field, value)
	}
	return filtered, nil
}

// LoadBySampling keeps the rows produced by one sampling scheme.
func LoadBySampling(location, sampling string) (*table.Table, error) {
	return LoadBy(location, models.ColSampling, sampling, stringsOf(models.Samplings()))
}

// LoadByResultType keeps the rows of one result encoding.
func LoadByResultType(location, resultType string) (*table.Table, error) {
	return LoadBy(location, models.ColResultType, resultType, stringsOf(models.ResultTypes()))
}

// LoadByDataset keeps the rows of one dataset.
func LoadByDataset(location, dataset string) (*table.Table, error) {
	return LoadBy(location, models.ColDatasetName, dataset, nil)
}

// LoadByName keeps the rows of one algorithm.
func LoadByName(location, name string) (*table.Table, error) {
	return LoadBy(location, models.ColName, name, nil)
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
