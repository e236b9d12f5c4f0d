// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/featstab/internal/config"
	"github.com/tomtom215/featstab/internal/database"
	"github.com/tomtom215/featstab/internal/datasets"
	"github.com/tomtom215/featstab/internal/logging"
	"github.com/tomtom215/featstab/internal/metrics"
	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/results"
	"github.com/tomtom215/featstab/internal/scoring"
	"github.com/tomtom215/featstab/internal/stability"
	"github.com/tomtom215/featstab/internal/table"
)

// ErrRunInProgress is returned by Run while another run is executing.
var ErrRunInProgress = errors.New("run already in progress")

// DatasetSource is the dataset repository loaded before scoring.
type DatasetSource interface {
	datasets.Getter
	Load(ctx context.Context) (int, error)
}

// Exporter mirrors output tables into a database. *database.DB implements it.
type Exporter interface {
	StartRun(ctx context.Context, run *database.Run) error
	FinishRun(ctx context.Context, run *database.Run) error
	ExportTable(ctx context.Context, runID, name string, t *table.Table) (int, error)
}

// Deps are the collaborators of a Runner. Datasets and Scorer are required
// only for the scoring stage; Exporter is optional.
type Deps struct {
	Datasets DatasetSource
	Scorer   scoring.SelectionScorer
	Exporter Exporter
}

// Runner executes evaluation runs and reports on the latest one.
type Runner struct {
	cfg       *config.Config
	deps      Deps
	stability *stability.Aggregator
	logger    zerolog.Logger
	now       func() time.Time

	mu      sync.RWMutex
	running bool
	report  models.RunReport
}

// NewRunner creates a Runner. cfg must have been validated.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewRunner(cfg *config.Config, deps Deps, logger zerolog.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		deps:      deps,
		stability: stability.NewAggregator(logger),
		logger:    logger.With().Str("component", "pipeline").Logger(),
		now:       time.Now,
		report: models.RunReport{
			State:       models.RunPending,
			ResultsPath: cfg.Results.Path,
		},
	}
}

// Status returns a copy of the report of the current or latest run.
func (r *Runner) Status() models.RunReport {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyReport(&r.report)
}

// IsRunning reports whether a run is executing.
func (r *Runner) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// run is the state of one execution.
type run struct {
	id     string
	prefix string
	logger zerolog.Logger
}

// Run executes the given stages, or all of them when none are given, and
// returns the final report. The error is non-nil when the run failed; the
// report is returned either way.
func (r *Runner) Run(ctx context.Context, stages ...Stage) (models.RunReport, error) {
	start := r.now()
	id := logging.GenerateRunID()

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return r.Status(), ErrRunInProgress
	}
	r.running = true
	r.report = models.RunReport{
		RunID:        id,
		State:        models.RunRunning,
		ResultsPath:  r.cfg.Results.Path,
		StartedAt:    start,
		Tables:       make(map[string]string),
		FailedStages: []string{},
	}
	r.mu.Unlock()

	ctx = logging.ContextWithRunID(ctx, id)
	cur := &run{
		id:     id,
		logger: r.logger.With().Str("run_id", id).Logger(),
	}
	if r.cfg.Output.Timestamped {
		cur.prefix = strconv.FormatInt(start.Unix(), 10) + "-"
	}

	cur.logger.Info().
		Str("results", r.cfg.Results.Path).
		Str("output", r.cfg.Output.Dir).
		Msg("Starting evaluation run")

	if r.deps.Exporter != nil {
		if err := r.deps.Exporter.StartRun(ctx, &database.Run{ID: id, StartedAt: start, ResultsPath: r.cfg.Results.Path}); err != nil {
			cur.logger.Warn().Err(err).Msg("Could not record run in database")
		}
	}

	err := r.execute(ctx, cur, newStageSet(stages))
	return r.finish(ctx, cur, start, err), err
}

func (r *Runner) execute(ctx context.Context, cur *run, stages stageSet) error {
	if stages[StageScoring] {
		if err := r.runScoring(ctx, cur); err != nil {
			return fmt.Errorf("scoring: %w", err)
		}
	}

	if stages[StageStability] {
		for _, sampling := range r.cfg.Evaluation.StabilitySamplings() {
			if err := r.guarded(ctx, cur, "stability-"+string(sampling), func() error {
				return r.runStability(ctx, cur, sampling, "stability-"+string(sampling))
			}); err != nil {
				return err
			}
		}
	}

	if stages[StageDeterminism] && r.cfg.Evaluation.Determinism {
		if err := r.guarded(ctx, cur, string(StageDeterminism), func() error {
			return r.runStability(ctx, cur, models.SamplingNone, "determinism")
		}); err != nil {
			return err
		}
	}

	if stages[StageTimes] {
		if err := r.runTimes(ctx, cur); err != nil {
			return fmt.Errorf("times: %w", err)
		}
	}
	return nil
}

// guarded runs fn as an optional stage. A failure is logged and recorded in
// the report; only cancellation of ctx is returned.
func (r *Runner) guarded(ctx context.Context, cur *run, stage string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	cur.logger.Warn().Err(err).Str("stage", stage).Msg("Could not run data stability evaluation")
	metrics.RecordStageFailure(stage)

	r.mu.Lock()
	r.report.FailedStages = append(r.report.FailedStages, stage)
	r.mu.Unlock()
	return nil
}

func (r *Runner) runScoring(ctx context.Context, cur *run) error {
	if !r.cfg.Scoring.Enabled {
		cur.logger.Info().Msg("Scoring disabled, skipping")
		return nil
	}
	if r.deps.Datasets == nil || r.deps.Scorer == nil {
		return fmt.Errorf("%w: scoring needs a dataset source and a scorer", models.ErrInvalidArgument)
	}

	// Datasets are read once, up front, so workers only ever hit the cache.
	n, err := r.deps.Datasets.Load(ctx)
	if err != nil {
		return fmt.Errorf("load datasets: %w", err)
	}
	cur.logger.Info().Int("datasets", n).Msg("Scoring recorded selections")

	agg := scoring.NewAggregator(r.deps.Scorer, r.cfg.Evaluation.EffectiveWorkers(), cur.logger)
	summary, complete, err := agg.SummarizedScoreAll(ctx, r.deps.Datasets, r.cfg.Results.Path, r.cfg.Evaluation.EvaluateAt)
	if err != nil {
		return err
	}

	if err := r.writeTable(ctx, cur, "scoring", scoring.SummaryTable(summary)); err != nil {
		return err
	}
	return r.writeTable(ctx, cur, "scoring-complete", scoring.CompleteTable(complete))
}

func (r *Runner) runStability(ctx context.Context, cur *run, sampling models.Sampling, stem string) error {
	opts := stability.Options{
		EvaluateAt:            r.cfg.Evaluation.EvaluateAt,
		Workers:               r.cfg.Evaluation.EffectiveWorkers(),
		EvaluateAtAllFeatures: r.cfg.Evaluation.EvaluateAtAllFeatures,
	}
	summary, complete, err := r.stability.SummarizedAlgorithmsStability(ctx, r.cfg.Results.Path, &sampling, opts)
	if err != nil {
		return err
	}

	if err := r.writeTable(ctx, cur, stem, stability.SummaryTable(summary)); err != nil {
		return err
	}
	return r.writeTable(ctx, cur, stem+"-complete", stability.CompleteTable(complete))
}

func (r *Runner) runTimes(ctx context.Context, cur *run) error {
	records, err := results.LoadRecords(r.cfg.Results.Path)
	if err != nil {
		return err
	}
	return r.writeTable(ctx, cur, "times", results.TimesTable(results.ExecutionTimes(records)))
}

// writeTable writes t as <prefix><stem>.csv and mirrors it into the
// database. Export failures are logged and do not fail the run.
func (r *Runner) writeTable(ctx context.Context, cur *run, stem string, t *table.Table) error {
	path, err := results.WriteTable(t, cur.prefix+stem, r.cfg.Output.Dir, true)
	if err != nil {
		return fmt.Errorf("write %s: %w", stem, err)
	}

	name := tableName(stem)
	metrics.RecordTableWritten(name)
	cur.logger.Info().Str("table", name).Str("path", path).Int("rows", t.Len()).Msg("Wrote table")

	r.mu.Lock()
	r.report.Tables[name] = path
	r.mu.Unlock()

	if r.deps.Exporter != nil {
		if _, err := r.deps.Exporter.ExportTable(ctx, cur.id, name, t); err != nil {
			cur.logger.Warn().Err(err).Str("table", name).Msg("Could not export table to database")
			metrics.RecordStageFailure("database")
		}
	}
	return nil
}

func (r *Runner) finish(ctx context.Context, cur *run, start time.Time, runErr error) models.RunReport {
	finished := r.now()
	duration := finished.Sub(start)
	metrics.RecordRun(duration)

	r.mu.Lock()
	r.running = false
	r.report.FinishedAt = &finished
	if runErr != nil {
		r.report.State = models.RunFailed
		r.report.Error = runErr.Error()
	} else {
		r.report.State = models.RunSucceeded
	}
	report := copyReport(&r.report)
	r.mu.Unlock()

	if r.deps.Exporter != nil {
		// The run context may already be cancelled; the run row is still updated.
		finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		err := r.deps.Exporter.FinishRun(finishCtx, &database.Run{
			ID:           cur.id,
			StartedAt:    start,
			FinishedAt:   finished,
			ResultsPath:  report.ResultsPath,
			Tables:       len(report.Tables),
			FailedStages: report.FailedStages,
		})
		if err != nil {
			cur.logger.Warn().Err(err).Msg("Could not record run outcome in database")
		}
	}

	event := cur.logger.Info()
	if runErr != nil {
		event = cur.logger.Error().Err(runErr)
	}
	event.
		Str("state", string(report.State)).
		Int("tables", len(report.Tables)).
		Strs("failed_stages", report.FailedStages).
		Dur("duration", duration).
		Msg("Evaluation run finished")
	return report
}

func copyReport(src *models.RunReport) models.RunReport {
	out := *src
	if src.Tables != nil {
		out.Tables = make(map[string]string, len(src.Tables))
		for k, v := range src.Tables {
			out.Tables[k] = v
		}
	}
	if src.FailedStages != nil {
		out.FailedStages = make([]string, len(src.FailedStages))
		copy(out.FailedStages, src.FailedStages)
	}
	if src.FinishedAt != nil {
		t := *src.FinishedAt
		out.FinishedAt = &t
	}
	return out
}
