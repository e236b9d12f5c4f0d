// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/featstab/internal/cache"
	"github.com/tomtom215/featstab/internal/config"
	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/results"
)

type testEnv struct {
	config string
	output string
}

func setupEnv(t *testing.T) testEnv {
	t.Helper()
	resultsDir := t.TempDir()
	outputDir := t.TempDir()

	records := []models.Record{
		{Name: "relief", DatasetName: "iris", ResultType: models.ResultRank, Sampling: models.SamplingBootstrap,
			NumFeatures: 4, NumSelected: 4, ProcessingTime: 1, Indices: []int{0, 1, 2, 3}},
		{Name: "relief", DatasetName: "iris", ResultType: models.ResultRank, Sampling: models.SamplingBootstrap,
			NumFeatures: 4, NumSelected: 4, ProcessingTime: 2, Indices: []int{1, 0, 2, 3}},
		{Name: "lasso", DatasetName: "iris", ResultType: models.ResultSubset, Sampling: models.SamplingNone,
			NumFeatures: 4, NumSelected: 2, ProcessingTime: 1, Indices: []int{3, 1}},
		{Name: "lasso", DatasetName: "iris", ResultType: models.ResultSubset, Sampling: models.SamplingNone,
			NumFeatures: 4, NumSelected: 2, ProcessingTime: 1, Indices: []int{1, 3}},
	}
	for i := range records {
		if _, err := results.AppendRecord(&records[i], "results", resultsDir); err != nil {
			t.Fatalf("AppendRecord() error = %v", err)
		}
	}

	cfgPath := filepath.Join(t.TempDir(), "featstab.yaml")
	content := fmt.Sprintf(`results:
  path: %s
output:
  dir: %s
  timestamped: false
evaluation:
  evaluate_at: [2]
  workers: 1
scoring:
  enabled: false
logging:
  level: error
`, resultsDir, outputDir)
	if err := os.WriteFile(cfgPath, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return testEnv{config: cfgPath, output: outputDir}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTimesCommand(t *testing.T) {
	env := setupEnv(t)

	out, err := execute(t, "times", "--config", env.config)
	if err != nil {
		t.Fatalf("times error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.output, "times.csv")); err != nil {
		t.Errorf("times.csv not written: %v", err)
	}
	if !strings.Contains(out, "succeeded") {
		t.Errorf("output = %q, want a succeeded run", out)
	}
}

func TestStabilityCommand_Sampling(t *testing.T) {
	env := setupEnv(t)

	out, err := execute(t, "stability", "--config", env.config, "--sampling", "bootstrap,none")
	if err != nil {
		t.Fatalf("stability error = %v", err)
	}
	for _, want := range []string{"stability_bootstrap_complete", "determinism_complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
	for _, unwanted := range []string{"stability_none", "stability_percent90", "failed:"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("output contains %s:\n%s", unwanted, out)
		}
	}
}

func TestStabilityCommand_InvalidSampling(t *testing.T) {
	env := setupEnv(t)

	if _, err := execute(t, "stability", "--config", env.config, "--sampling", "jackknife"); err == nil {
		t.Error("stability --sampling jackknife error = nil, want error")
	}
}

func TestRunCommand_InvalidStage(t *testing.T) {
	env := setupEnv(t)

	_, err := execute(t, "run", "--config", env.config, "--stages", "selection")
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("run --stages selection error = %v, want ErrInvalidArgument", err)
	}
}

func TestRunCommand_ScoringDisabled(t *testing.T) {
	env := setupEnv(t)

	out, err := execute(t, "run", "--config", env.config, "--evaluate-at", "1,2")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if strings.Contains(out, "scoring_complete") {
		t.Errorf("output lists scoring tables with scoring disabled:\n%s", out)
	}
	if !strings.Contains(out, "times") {
		t.Errorf("output missing times table:\n%s", out)
	}
}

func TestScoreCommand_Disabled(t *testing.T) {
	env := setupEnv(t)

	if _, err := execute(t, "score", "--config", env.config); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("score error = %v, want ErrInvalidArgument", err)
	}
}

func TestCacheCommands(t *testing.T) {
	env := setupEnv(t)
	path := filepath.Join(t.TempDir(), "cache")

	scores, err := cache.Open(&config.CacheConfig{Path: path}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	key := cache.Key("panel", "iris", []int{1, 2})
	if err := scores.Put(key, models.ClassifierScores{"SVM": {"macro_f1": 0.5}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := scores.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	out, err := execute(t, "cache", "stats", "--config", env.config, "--path", path)
	if err != nil {
		t.Fatalf("cache stats error = %v", err)
	}
	if got := strings.TrimSpace(out); got != "1 cached scores" {
		t.Errorf("cache stats = %q, want %q", got, "1 cached scores")
	}

	out, err = execute(t, "cache", "purge", "--config", env.config, "--path", path)
	if err != nil {
		t.Fatalf("cache purge error = %v", err)
	}
	if got := strings.TrimSpace(out); got != "purged 1 cached scores" {
		t.Errorf("cache purge = %q, want %q", got, "purged 1 cached scores")
	}

	out, err = execute(t, "cache", "stats", "--config", env.config, "--path", path)
	if err != nil {
		t.Fatalf("cache stats error = %v", err)
	}
	if got := strings.TrimSpace(out); got != "0 cached scores" {
		t.Errorf("cache stats after purge = %q, want %q", got, "0 cached scores")
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, models.RunReport{})
	if buf.Len() != 0 {
		t.Errorf("printReport(empty) = %q, want nothing", buf.String())
	}

	printReport(&buf, models.RunReport{
		RunID:        "abc12345",
		State:        models.RunSucceeded,
		Tables:       map[string]string{"times": "out/times.csv", "scoring": "out/scoring.csv"},
		FailedStages: []string{"stability-percent90"},
	})
	got := buf.String()
	if !strings.HasPrefix(got, "run abc12345 succeeded\n") {
		t.Errorf("printReport() = %q, want run header first", got)
	}
	if strings.Index(got, "scoring") > strings.Index(got, "times") {
		t.Errorf("printReport() tables not sorted:\n%s", got)
	}
	if !strings.Contains(got, "failed: stability-percent90") {
		t.Errorf("printReport() missing failed stage:\n%s", got)
	}
}
