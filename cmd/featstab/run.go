// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tomtom215/featstab/internal/logging"
	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/pipeline"
	"github.com/tomtom215/featstab/internal/supervisor"
	"github.com/tomtom215/featstab/internal/supervisor/services"
)

// serveFlags are shared by every command that executes a run.
type serveFlags struct {
	serve       bool
	keepServing bool
}

func (s *serveFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&s.serve, "serve", false, "run under the supervisor with the status server")
	cmd.Flags().BoolVar(&s.keepServing, "keep-serving", false, "keep the status server up after the run (implies --serve)")
}

func (c *cli) newRunCmd() *cobra.Command {
	var (
		sf     serveFlags
		stages []string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run scoring, stability, determinism and times in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected := make([]pipeline.Stage, 0, len(stages))
			for _, s := range stages {
				st, err := pipeline.ParseStage(s)
				if err != nil {
					return err
				}
				selected = append(selected, st)
			}
			return c.evaluate(cmd, &sf, selected...)
		},
	}
	sf.register(cmd)
	cmd.Flags().StringSliceVar(&stages, "stages", nil, "stages to run (default: all)")
	return cmd
}

func (c *cli) newScoreCmd() *cobra.Command {
	var sf serveFlags
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score every recorded selection with the classifier panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !c.cfg.Scoring.Enabled {
				return fmt.Errorf("%w: scoring is disabled in the configuration", models.ErrInvalidArgument)
			}
			return c.evaluate(cmd, &sf, pipeline.StageScoring)
		},
	}
	sf.register(cmd)
	return cmd
}

func (c *cli) newStabilityCmd() *cobra.Command {
	var (
		sf          serveFlags
		samplings   []string
		allFeatures bool
	)
	cmd := &cobra.Command{
		Use:   "stability",
		Short: "Compute stability per sampling scheme and determinism",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("sampling") {
				// none is evaluated as determinism, not as a stability scheme.
				c.cfg.Evaluation.Samplings = c.cfg.Evaluation.Samplings[:0]
				c.cfg.Evaluation.Determinism = false
				for _, s := range samplings {
					if s == string(models.SamplingNone) {
						c.cfg.Evaluation.Determinism = true
						continue
					}
					c.cfg.Evaluation.Samplings = append(c.cfg.Evaluation.Samplings, s)
				}
			}
			if cmd.Flags().Changed("all-features") {
				c.cfg.Evaluation.EvaluateAtAllFeatures = allFeatures
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			return c.evaluate(cmd, &sf, pipeline.StageStability, pipeline.StageDeterminism)
		},
	}
	sf.register(cmd)
	cmd.Flags().StringSliceVar(&samplings, "sampling", nil, "sampling schemes; none selects determinism (default: configured)")
	cmd.Flags().BoolVar(&allFeatures, "all-features", false, "also evaluate at k = num_selected when every feature was selected")
	return cmd
}

func (c *cli) newTimesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "times",
		Short: "Summarize processing time per algorithm and dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.evaluate(cmd, &serveFlags{}, pipeline.StageTimes)
		},
	}
}

// evaluate executes one run of stages, under the supervisor tree when the
// status server is requested, and prints the report.
func (c *cli) evaluate(cmd *cobra.Command, sf *serveFlags, stages ...pipeline.Stage) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	withScoring := len(stages) == 0
	for _, st := range stages {
		if st == pipeline.StageScoring {
			withScoring = true
		}
	}

	env, err := newEnvironment(c.cfg, c.logger, withScoring)
	if err != nil {
		return err
	}
	defer env.Close(c.logger)

	var runErr error
	if sf.serve || sf.keepServing || c.cfg.Server.Enabled {
		runErr = c.supervised(ctx, env.runner, sf.keepServing, stages)
	} else {
		_, runErr = env.runner.Run(ctx, stages...)
	}

	printReport(cmd.OutOrStdout(), env.runner.Status())
	return runErr
}

// supervised runs the evaluation as a job next to the status server.
func (c *cli) supervised(ctx context.Context, runner *pipeline.Runner, keepServing bool, stages []pipeline.Stage) error {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(c.logger), supervisor.TreeConfig{
		ShutdownTimeout: c.cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	server := newStatusServer(&c.cfg.Server, runner, c.logger)
	tree.AddAPIService(services.NewHTTPServerService(server, c.cfg.Server.ShutdownTimeout))
	c.logger.Info().Str("addr", server.Addr).Msg("Status server added to supervisor tree")

	job := services.NewJobService("evaluation", func(ctx context.Context) error {
		_, err := runner.Run(ctx, stages...)
		return err
	})
	err = tree.RunJob(ctx, job, keepServing)

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		c.logger.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}
	if errors.Is(err, context.Canceled) {
		c.logger.Info().Msg("Evaluation interrupted")
	}
	return err
}

func printReport(w io.Writer, report models.RunReport) {
	if report.RunID == "" {
		return
	}
	names := make([]string, 0, len(report.Tables))
	for name := range report.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	_, _ = fmt.Fprintf(w, "run %s %s\n", report.RunID, report.State)
	for _, name := range names {
		_, _ = fmt.Fprintf(w, "  %-30s %s\n", name, report.Tables[name])
	}
	for _, stage := range report.FailedStages {
		_, _ = fmt.Fprintf(w, "  failed: %s\n", stage)
	}
}
