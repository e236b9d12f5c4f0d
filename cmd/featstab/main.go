// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

// Package main is the featstab command line tool.
//
// featstab evaluates recorded feature selection results: how well the
// selected features classify (scoring), how consistent an algorithm is
// across resampled executions (stability and determinism) and how long it
// took (times).
//
// # Commands
//
//	featstab run          all stages in order
//	featstab score        scoring only
//	featstab stability    stability and determinism
//	featstab times        execution times
//	featstab cache purge  drop every cached classifier score
//	featstab cache stats  count cached classifier scores
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Command line flags
//   - Environment variables (FEATSTAB_RESULTS_PATH, FEATSTAB_WORKERS, DUCKDB_PATH, LOG_LEVEL, ...)
//   - Config file (--config, CONFIG_PATH, ./featstab.yaml)
//   - Built-in defaults
//
// # Status Server
//
// With --serve (or server.enabled) the run executes under a supervisor tree
// next to an HTTP server exposing /healthz, /status and /metrics. With
// --keep-serving the server stays up after the run until SIGINT or SIGTERM.
//
// # Example Usage
//
//	featstab run --results results/ --output evaluation/ --evaluate-at 5,10,20
//	featstab stability --sampling bootstrap --workers 8
//	DUCKDB_PATH=evaluation/featstab.duckdb featstab run --serve --keep-serving
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/featstab/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.Error().Err(err).Msg("featstab failed")
		stop()
		os.Exit(1)
	}
}
