// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/featstab/internal/config"
	"github.com/tomtom215/featstab/internal/database"
	"github.com/tomtom215/featstab/internal/datasets"
	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/results"
	"github.com/tomtom215/featstab/internal/table"
)

type fakeDatasets struct {
	loads int
}

func (f *fakeDatasets) Load(context.Context) (int, error) {
	f.loads++
	return 1, nil
}

func (f *fakeDatasets) Get(name string) (*datasets.Dataset, error) {
	if name != "iris" {
		return nil, fmt.Errorf("%w: dataset %q", models.ErrNotFound, name)
	}
	return &datasets.Dataset{Name: name}, nil
}

type fakeScorer struct {
	err     error
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (f *fakeScorer) ScoreSelection(ctx context.Context, _ *datasets.Dataset, features []int) (models.ClassifierScores, error) {
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return models.ClassifierScores{"Fake": {"macro_f1": float64(len(features)) / 10}}, nil
}

type fakeExporter struct {
	mu       sync.Mutex
	started  []string
	finished []database.Run
	tables   []string
	fail     bool
}

func (f *fakeExporter) StartRun(_ context.Context, run *database.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, run.ID)
	return nil
}

func (f *fakeExporter) FinishRun(_ context.Context, run *database.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, *run)
	return nil
}

func (f *fakeExporter) ExportTable(_ context.Context, _, name string, t *table.Table) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, errors.New("disk full")
	}
	f.tables = append(f.tables, name)
	return t.Len(), nil
}

func writeResults(t *testing.T, dir string) {
	t.Helper()
	records := []models.Record{
		{Name: "relief", DatasetName: "iris", ResultType: models.ResultRank, Sampling: models.SamplingBootstrap,
			NumFeatures: 6, NumSelected: 6, ProcessingTime: 1, Indices: []int{0, 1, 2, 3, 4, 5}},
		{Name: "relief", DatasetName: "iris", ResultType: models.ResultRank, Sampling: models.SamplingBootstrap,
			NumFeatures: 6, NumSelected: 6, ProcessingTime: 3, Indices: []int{1, 0, 2, 3, 5, 4}},
		{Name: "lasso", DatasetName: "iris", ResultType: models.ResultSubset, Sampling: models.SamplingNone,
			NumFeatures: 6, NumSelected: 2, ProcessingTime: 0.5, Indices: []int{4, 1}},
		{Name: "lasso", DatasetName: "iris", ResultType: models.ResultSubset, Sampling: models.SamplingNone,
			NumFeatures: 6, NumSelected: 2, ProcessingTime: 0.5, Indices: []int{1, 4}},
	}
	for i := range records {
		if _, err := results.AppendRecord(&records[i], "results", dir); err != nil {
			t.Fatalf("AppendRecord() error = %v", err)
		}
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Results.Path = t.TempDir()
	cfg.Output.Dir = t.TempDir()
	cfg.Output.Timestamped = false
	cfg.Evaluation.EvaluateAt = []int{2}
	cfg.Evaluation.Workers = 1
	cfg.Evaluation.Samplings = []string{"bootstrap", "percent90"}
	cfg.Evaluation.Determinism = true
	writeResults(t, cfg.Results.Path)
	return cfg
}

func TestRun_AllStages(t *testing.T) {
	cfg := testConfig(t)
	ds := &fakeDatasets{}
	exporter := &fakeExporter{}
	runner := NewRunner(cfg, Deps{Datasets: ds, Scorer: &fakeScorer{}, Exporter: exporter}, zerolog.Nop())

	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.State != models.RunSucceeded || !report.Succeeded() {
		t.Errorf("State = %s, want %s", report.State, models.RunSucceeded)
	}
	if report.RunID == "" || report.FinishedAt == nil {
		t.Errorf("report = %+v, want run ID and finish time", report)
	}
	if ds.loads != 1 {
		t.Errorf("dataset loads = %d, want 1", ds.loads)
	}

	// No percent90 rows were recorded, so that scheme fails alone.
	if want := []string{"stability-percent90"}; !reflect.DeepEqual(report.FailedStages, want) {
		t.Errorf("FailedStages = %v, want %v", report.FailedStages, want)
	}

	wantTables := []string{
		"determinism", "determinism_complete",
		"scoring", "scoring_complete",
		"stability_bootstrap", "stability_bootstrap_complete",
		"times",
	}
	var gotTables []string
	for name, path := range report.Tables {
		gotTables = append(gotTables, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("table %s not written: %v", name, err)
		}
	}
	sort.Strings(gotTables)
	if !reflect.DeepEqual(gotTables, wantTables) {
		t.Errorf("Tables = %v, want %v", gotTables, wantTables)
	}
	if got := filepath.Base(report.Tables["stability_bootstrap_complete"]); got != "stability-bootstrap-complete.csv" {
		t.Errorf("file name = %s, want stability-bootstrap-complete.csv", got)
	}

	sort.Strings(exporter.tables)
	if !reflect.DeepEqual(exporter.tables, wantTables) {
		t.Errorf("exported = %v, want %v", exporter.tables, wantTables)
	}
	if len(exporter.started) != 1 || exporter.started[0] != report.RunID {
		t.Errorf("StartRun calls = %v, want [%s]", exporter.started, report.RunID)
	}
	if len(exporter.finished) != 1 || exporter.finished[0].Tables != len(wantTables) {
		t.Errorf("FinishRun calls = %+v, want one with %d tables", exporter.finished, len(wantTables))
	}

	if got := runner.Status(); !reflect.DeepEqual(got, report) {
		t.Errorf("Status() = %+v, want %+v", got, report)
	}
}

func TestRun_ScoringFailureFailsRun(t *testing.T) {
	cfg := testConfig(t)
	runner := NewRunner(cfg, Deps{
		Datasets: &fakeDatasets{},
		Scorer:   &fakeScorer{err: errors.New("singular matrix")},
	}, zerolog.Nop())

	report, err := runner.Run(context.Background())
	if !errors.Is(err, models.ErrNoScorableResults) {
		t.Fatalf("Run() error = %v, want ErrNoScorableResults", err)
	}
	if report.State != models.RunFailed || report.Error == "" {
		t.Errorf("report = %s/%q, want failed with error", report.State, report.Error)
	}
	if len(report.Tables) != 0 {
		t.Errorf("Tables = %v, want none", report.Tables)
	}
}

func TestRun_ScoringDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scoring.Enabled = false
	runner := NewRunner(cfg, Deps{}, zerolog.Nop())

	report, err := runner.Run(context.Background(), StageScoring, StageTimes)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Tables) != 1 || report.Tables["times"] == "" {
		t.Errorf("Tables = %v, want only times", report.Tables)
	}
}

func TestRun_MissingScorer(t *testing.T) {
	cfg := testConfig(t)
	runner := NewRunner(cfg, Deps{}, zerolog.Nop())

	if _, err := runner.Run(context.Background(), StageScoring); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("Run() error = %v, want ErrInvalidArgument", err)
	}
}

func TestRun_TimestampPrefix(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Timestamped = true
	runner := NewRunner(cfg, Deps{}, zerolog.Nop())
	runner.now = func() time.Time { return time.Unix(1700000000, 0) }

	report, err := runner.Run(context.Background(), StageTimes)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := filepath.Base(report.Tables["times"]); got != "1700000000-times.csv" {
		t.Errorf("times file = %s, want 1700000000-times.csv", got)
	}
}

func TestRun_DeterminismDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Evaluation.Determinism = false
	cfg.Evaluation.Samplings = []string{"bootstrap"}
	runner := NewRunner(cfg, Deps{}, zerolog.Nop())

	report, err := runner.Run(context.Background(), StageStability, StageDeterminism)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, ok := report.Tables["determinism"]; ok {
		t.Error("determinism table written while disabled")
	}
	if _, ok := report.Tables["stability_bootstrap"]; !ok {
		t.Error("stability_bootstrap table missing")
	}
}

func TestRun_ExportFailureDoesNotFailRun(t *testing.T) {
	cfg := testConfig(t)
	runner := NewRunner(cfg, Deps{Exporter: &fakeExporter{fail: true}}, zerolog.Nop())

	report, err := runner.Run(context.Background(), StageTimes)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Tables["times"] == "" {
		t.Error("times table missing after export failure")
	}
}

func TestRun_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	runner := NewRunner(cfg, Deps{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := runner.Run(ctx, StageStability)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if report.State != models.RunFailed {
		t.Errorf("State = %s, want %s", report.State, models.RunFailed)
	}
	if len(report.FailedStages) != 0 {
		t.Errorf("FailedStages = %v, want none for a cancelled run", report.FailedStages)
	}
}

func TestRun_InProgress(t *testing.T) {
	cfg := testConfig(t)
	scorer := &fakeScorer{started: make(chan struct{}), release: make(chan struct{})}
	runner := NewRunner(cfg, Deps{Datasets: &fakeDatasets{}, Scorer: scorer}, zerolog.Nop())

	if got := runner.Status().State; got != models.RunPending {
		t.Errorf("initial State = %s, want %s", got, models.RunPending)
	}

	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(context.Background(), StageScoring)
		done <- err
	}()

	<-scorer.started
	if !runner.IsRunning() {
		t.Error("IsRunning() = false during a run")
	}
	if got := runner.Status().State; got != models.RunRunning {
		t.Errorf("State = %s, want %s", got, models.RunRunning)
	}
	if _, err := runner.Run(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("second Run() error = %v, want ErrRunInProgress", err)
	}

	close(scorer.release)
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if runner.IsRunning() {
		t.Error("IsRunning() = true after the run")
	}
}

func TestParseStage(t *testing.T) {
	tests := []struct {
		in      string
		want    Stage
		wantErr bool
	}{
		{"scoring", StageScoring, false},
		{"Stability", StageStability, false},
		{"DETERMINISM", StageDeterminism, false},
		{"times", StageTimes, false},
		{"selection", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStage(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStage(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStage(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
