// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package results

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/table"
)

// appendMu serializes appends so concurrent writers never interleave a
// header check with another writer's first row.
var appendMu sync.Mutex

// WriteTable writes t to baseDir/fileName, adding the .csv extension when
// missing. With replace the file is truncated and written with a header;
// otherwise rows are appended without one. It returns the written path.
func WriteTable(t *table.Table, fileName, baseDir string, replace bool) (string, error) {
	path, err := prepare(fileName, baseDir)
	if err != nil {
		return "", err
	}

	if replace {
		f, err := os.Create(path) //nolint:gosec // output path built from configuration
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		if err := t.WriteCSV(f); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		return path, f.Close()
	}

	appendMu.Lock()
	defer appendMu.Unlock()
	return path, appendRows(t, path)
}

// AppendRecord appends one result row to baseDir/fileName, writing the header
// only when the file is new or empty.
func AppendRecord(rec *models.Record, fileName, baseDir string) (string, error) {
	t, err := EncodeRecords([]models.Record{*rec})
	if err != nil {
		return "", err
	}

	path, err := prepare(fileName, baseDir)
	if err != nil {
		return "", err
	}

	appendMu.Lock()
	defer appendMu.Unlock()
	return path, appendRows(t, path)
}

func appendRows(t *table.Table, path string) error {
	info, err := os.Stat(path)
	needsHeader := errors.Is(err, fs.ErrNotExist) || (err == nil && info.Size() == 0)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640) //nolint:gosec // output path built from configuration
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if needsHeader {
		err = t.WriteCSV(f)
	} else {
		err = t.WriteCSVRows(f)
	}
	if err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	return f.Close()
}

func prepare(fileName, baseDir string) (string, error) {
	if fileName == "" {
		return "", fmt.Errorf("%w: empty file name", models.ErrInvalidArgument)
	}
	if !strings.EqualFold(filepath.Ext(fileName), Extension) {
		fileName += Extension
	}

	if baseDir == "" {
		baseDir = "."
	}
	if info, err := os.Stat(baseDir); err == nil && !info.IsDir() {
		return "", fmt.Errorf("%w: %q exists and is not a directory", models.ErrInvalidArgument, baseDir)
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", baseDir, err)
	}
	return filepath.Join(baseDir, fileName), nil
}
