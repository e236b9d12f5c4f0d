// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/featstab/internal/config"
	"github.com/tomtom215/featstab/internal/logging"
)

// cli holds the persistent flags and the configuration they resolve to.
type cli struct {
	configPath string
	results    string
	output     string
	workers    int
	evaluateAt []int
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "featstab",
		Short: "Evaluate the quality and stability of feature selection results",
		Long: `featstab reads the result tables recorded by feature selection runs and
produces scoring, stability, determinism and execution time tables.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.load,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default: CONFIG_PATH or ./featstab.yaml)")
	flags.StringVar(&c.results, "results", "", "results file or directory")
	flags.StringVar(&c.output, "output", "", "output directory for evaluation tables")
	flags.IntVar(&c.workers, "workers", 0, "parallel workers (0 = CPU count)")
	flags.IntSliceVar(&c.evaluateAt, "evaluate-at", nil, "cutoffs applied to rank and weights results")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&c.logFormat, "log-format", "", "log format: console or json")

	root.AddCommand(
		c.newRunCmd(),
		c.newScoreCmd(),
		c.newStabilityCmd(),
		c.newTimesCmd(),
		c.newCacheCmd(),
	)
	return root
}

// load resolves the configuration, applies flag overrides and initializes
// logging. It runs before every subcommand.
func (c *cli) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadWithKoanf(c.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("results") {
		cfg.Results.Path = c.results
	}
	if flags.Changed("output") {
		cfg.Output.Dir = c.output
	}
	if flags.Changed("workers") {
		cfg.Evaluation.Workers = c.workers
	}
	if flags.Changed("evaluate-at") {
		cfg.Evaluation.EvaluateAt = c.evaluateAt
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = c.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = c.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logConfig := logging.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.Format = cfg.Logging.Format
	logConfig.Caller = cfg.Logging.Caller
	logConfig.Output = cmd.ErrOrStderr()
	logging.Init(logConfig)

	c.cfg = cfg
	c.logger = logging.Logger()
	c.logger.Debug().
		Str("results", cfg.Results.Path).
		Str("output", cfg.Output.Dir).
		Int("workers", cfg.Evaluation.EffectiveWorkers()).
		Msg("Configuration loaded")
	return nil
}
