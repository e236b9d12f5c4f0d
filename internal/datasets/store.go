// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

// Package datasets holds the labelled datasets that feature selections are
// scored against.
//
// A Store is filled once by Load before any worker starts and is shared by
// reference afterwards. Get of a configured dataset that was not loaded yet
// reads it on demand, deduplicated with singleflight. A dataset that failed to
// load keeps returning its first error.
package datasets

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/featstab/internal/config"
	"github.com/tomtom215/featstab/internal/metrics"
	"github.com/tomtom215/featstab/internal/models"
)

// Getter is the dataset repository consumed by the scorer.
type Getter interface {
	Get(name string) (*Dataset, error)
}

// Store is the file-backed dataset repository.
type Store struct {
	basePath string
	files    map[string]string
	opts     ReadOptions
	logger   zerolog.Logger

	mu       sync.RWMutex
	datasets map[string]*Dataset
	failed   map[string]error
	flight   singleflight.Group
}

// NewStore creates a Store for the configured datasets. Nothing is read
// until Load or Get.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewStore(cfg *config.DatasetsConfig, logger zerolog.Logger) *Store {
	files := make(map[string]string, len(cfg.Files))
	for name, path := range cfg.Files {
		files[name] = path
	}
	return &Store{
		basePath: cfg.BasePath,
		files:    files,
		opts: ReadOptions{
			LabelColumn: cfg.LabelColumn,
			DropColumns: append([]string(nil), cfg.DropColumns...),
			Normalize:   cfg.Normalize,
		},
		logger:   logger.With().Str("component", "datasets").Logger(),
		datasets: make(map[string]*Dataset),
		failed:   make(map[string]error),
	}
}

// Load reads every configured dataset. A dataset that cannot be read is
// logged and skipped. It returns the number of datasets held afterwards.
func (s *Store) Load(ctx context.Context) (int, error) {
	s.mu.RLock()
	configured := len(s.files)
	s.mu.RUnlock()
	if configured == 0 {
		discovered, err := discover(s.basePath)
		if err != nil {
			return 0, err
		}
		s.mu.Lock()
		s.files = discovered
		s.mu.Unlock()
	}

	names := s.fileNames()

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return s.Len(), err
		}
		if _, err := s.load(name); err != nil {
			s.logger.Warn().Err(err).Str("dataset", name).Msg("Could not load dataset")
			continue
		}
	}

	n := s.Len()
	metrics.SetDatasetsLoaded(n)
	s.logger.Info().Int("datasets", n).Int("configured", len(names)).Msg("Datasets loaded")
	return n, nil
}

// Get returns the named dataset.
func (s *Store) Get(name string) (*Dataset, error) {
	s.mu.RLock()
	ds, ok := s.datasets[name]
	s.mu.RUnlock()
	if ok {
		return ds, nil
	}
	return s.load(name)
}

// Add registers an in-memory dataset, replacing one with the same name.
func (s *Store) Add(ds *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[ds.Name] = ds
}

// Names returns the loaded dataset names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.datasets))
	for name := range s.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of loaded datasets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}

func (s *Store) fileNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) load(name string) (*Dataset, error) {
	s.mu.RLock()
	rel, ok := s.files[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: there is no dataset named %q", models.ErrNotFound, name)
	}

	v, err, _ := s.flight.Do(name, func() (interface{}, error) {
		s.mu.RLock()
		cached, ok := s.datasets[name]
		failure := s.failed[name]
		s.mu.RUnlock()
		if ok {
			return cached, nil
		}
		// A file that failed once is not read again
		if failure != nil {
			return nil, failure
		}

		ds, err := s.read(name, rel)

		s.mu.Lock()
		if err != nil {
			s.failed[name] = err
		} else {
			s.datasets[name] = ds
		}
		s.mu.Unlock()
		if err != nil {
			return nil, err
		}

		s.logger.Debug().
			Str("dataset", name).
			Int("samples", ds.NumSamples()).
			Int("features", ds.NumFeatures()).
			Int("classes", len(ds.Classes)).
			Msg("Added dataset")
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

func (s *Store) read(name, rel string) (*Dataset, error) {
	path := filepath.Join(s.basePath, rel)
	f, err := os.Open(path) //nolint:gosec // dataset paths come from configuration
	if err != nil {
		return nil, fmt.Errorf("%w: dataset %s: %v", models.ErrNotFound, name, err)
	}
	defer f.Close()
	return Read(name, f, s.opts)
}

// discover maps the stem of every .csv file under basePath to its path
// relative to basePath.
func discover(basePath string) (map[string]string, error) {
	files := make(map[string]string)
	err := filepath.WalkDir(basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		rel, err := filepath.Rel(basePath, path)
		if err != nil {
			return err
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		files[stem] = rel
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: datasets directory %s: %v", models.ErrNotFound, basePath, err)
	}
	return files, nil
}
