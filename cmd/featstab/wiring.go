// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/featstab/internal/api"
	"github.com/tomtom215/featstab/internal/cache"
	"github.com/tomtom215/featstab/internal/classify"
	"github.com/tomtom215/featstab/internal/config"
	"github.com/tomtom215/featstab/internal/database"
	"github.com/tomtom215/featstab/internal/datasets"
	"github.com/tomtom215/featstab/internal/pipeline"
	"github.com/tomtom215/featstab/internal/scoring"
)

// environment is the set of components one command runs with.
type environment struct {
	runner  *pipeline.Runner
	closers []func() error
}

// newEnvironment builds the runner and its optional collaborators. The
// dataset store and classifier panel are only built when withScoring is set
// and scoring is enabled.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func newEnvironment(cfg *config.Config, logger zerolog.Logger, withScoring bool) (_ *environment, err error) {
	env := &environment{}
	defer func() {
		if err != nil {
			env.Close(logger)
		}
	}()

	var deps pipeline.Deps

	if withScoring && cfg.Scoring.Enabled {
		deps.Datasets = datasets.NewStore(&cfg.Datasets, logger)

		panel, err := classify.NewScorer(&cfg.Scoring, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create classifier panel: %w", err)
		}
		deps.Scorer = panel

		if cfg.Cache.Enabled {
			scores, err := cache.Open(&cfg.Cache, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to open score cache: %w", err)
			}
			env.closers = append(env.closers, scores.Close)
			deps.Scorer = scoring.NewCachedScorer(panel, scores, logger)
			logger.Info().Str("path", cfg.Cache.Path).Msg("Score cache enabled")
		}
	}

	if cfg.Database.Path != "" {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, db.Close)
		deps.Exporter = database.NewBreakerExporter(db, 0, 0, logger)
	}

	env.runner = pipeline.NewRunner(cfg, deps, logger)
	return env, nil
}

// Close releases the components in reverse order of creation.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func (e *environment) Close(logger zerolog.Logger) {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error().Err(err).Msg("Error closing components")
	}
}

// newStatusServer serves the status API for runner.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func newStatusServer(cfg *config.ServerConfig, runner *pipeline.Runner, logger zerolog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewRouter(runner, cfg, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
