// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package stability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/results"
	"github.com/tomtom215/featstab/internal/table"
)

func subset(name, dataset string, n int, sampling models.Sampling, indices ...int) models.Record {
	return models.Record{
		Name: name, DatasetName: dataset, ResultType: models.ResultSubset, Sampling: sampling,
		NumFeatures: n, NumSelected: len(indices), Indices: indices,
	}
}

func rank(name, dataset string, n int, indices ...int) models.Record {
	return models.Record{
		Name: name, DatasetName: dataset, ResultType: models.ResultRank, Sampling: models.SamplingBootstrap,
		NumFeatures: n, NumSelected: len(indices), Indices: indices,
	}
}

func weights(name, dataset string, w ...float64) models.Record {
	return models.Record{
		Name: name, DatasetName: dataset, ResultType: models.ResultWeights, Sampling: models.SamplingBootstrap,
		NumFeatures: len(w), NumSelected: len(w), Weights: w,
	}
}

func newTestAggregator() *Aggregator {
	return NewAggregator(zerolog.Nop())
}

func TestEvaluate_IdenticalSubsets(t *testing.T) {
	records := []models.Record{
		subset("A", "d", 10, models.SamplingBootstrap, 0, 1, 2),
		subset("A", "d", 10, models.SamplingBootstrap, 0, 1, 2),
		subset("A", "d", 10, models.SamplingBootstrap, 0, 1, 2),
	}

	rows, err := newTestAggregator().Evaluate(context.Background(), records, Options{})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}

	row := rows[0]
	if row.Executions != 3 || row.Selected != 3 || row.Feats != 10 {
		t.Errorf("row = %+v, want executions 3, selected 3, feats 10", row)
	}
	if row.Metrics[models.MetricJaccard] != 1 || row.Metrics[models.MetricHamming] != 0 {
		t.Errorf("jaccard/hamming = %v/%v, want 1/0",
			row.Metrics[models.MetricJaccard], row.Metrics[models.MetricHamming])
	}
	for _, m := range []models.Metric{models.MetricCanberra, models.MetricSpearman, models.MetricPearson} {
		if _, ok := row.Metrics[m]; ok {
			t.Errorf("subset row should not carry %s", m)
		}
	}
}

func TestEvaluate_Weights(t *testing.T) {
	records := []models.Record{
		weights("W", "d", 0.9, 0.1, 0.8, 0.2, 0.05),
		weights("W", "d", 0.85, 0.15, 0.75, 0.25, 0.1),
	}

	rows, err := newTestAggregator().Evaluate(context.Background(), records, Options{EvaluateAt: []int{2, 5}})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	top2 := rows[0]
	if top2.Selected != 2 {
		t.Fatalf("rows[0].Selected = %d, want 2", top2.Selected)
	}
	if top2.Metrics[models.MetricJaccard] != 1 {
		t.Errorf("top-2 jaccard = %v, want 1", top2.Metrics[models.MetricJaccard])
	}
	for _, m := range models.Metrics() {
		if _, ok := top2.Metrics[m]; !ok {
			t.Errorf("weights row missing %s", m)
		}
	}

	full := rows[1]
	if p := full.Metrics[models.MetricPearson]; p <= 0.9 {
		t.Errorf("full-length pearson = %v, want > 0.9", p)
	}
	// Weight-based canberra on the raw vectors, not the rank positions
	want := Canberra([][]float64{records[0].Weights, records[1].Weights})
	if !near(full.Metrics[models.MetricCanberra], want) {
		t.Errorf("canberra = %v, want weight-based %v", full.Metrics[models.MetricCanberra], want)
	}
}

func TestEvaluate_RankCutoffs(t *testing.T) {
	records := []models.Record{
		rank("R", "d", 8, 0, 1, 2, 3, 4, 5, 6, 7),
		rank("R", "d", 8, 1, 0, 2, 3, 4, 5, 7, 6),
	}

	rows, err := newTestAggregator().Evaluate(context.Background(), records, Options{EvaluateAt: []int{5, 10}})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Selected != 5 {
		t.Fatalf("rows = %+v, want a single k=5 row", rows)
	}
	if rows[0].Metrics[models.MetricJaccard] != 1 {
		t.Errorf("jaccard@5 = %v, want 1", rows[0].Metrics[models.MetricJaccard])
	}

	rows, err = newTestAggregator().Evaluate(context.Background(), records,
		Options{EvaluateAt: []int{5, 10}, EvaluateAtAllFeatures: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1].Selected != 8 {
		t.Errorf("rows = %+v, want k=5 and k=8", rows)
	}
}

func TestEvaluate_MixedGroupFails(t *testing.T) {
	bad := rank("A", "d", 3, 0, 1, 2)
	records := []models.Record{
		subset("A", "d", 3, models.SamplingBootstrap, 0, 1, 2),
		bad,
	}

	_, err := newTestAggregator().Evaluate(context.Background(), records, Options{Workers: 4})
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("Evaluate() error = %v, want ErrInvalidArgument", err)
	}
}

func TestEvaluate_InvalidOptions(t *testing.T) {
	_, err := newTestAggregator().Evaluate(context.Background(), nil, Options{EvaluateAt: []int{5, 5}})
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("Evaluate() error = %v, want ErrInvalidArgument", err)
	}
}

func TestEvaluate_ParallelMatchesSequential(t *testing.T) {
	var records []models.Record
	for a := 0; a < 4; a++ {
		for d := 0; d < 5; d++ {
			name, dataset := fmt.Sprintf("alg%d", a), fmt.Sprintf("ds%d", d)
			records = append(records,
				rank(name, dataset, 12, 0, 1, 2, 3, 4, 5, d, 7, 8, 9, 10, 11),
				rank(name, dataset, 12, 1, 0, 2, 3, 4, 5, 6, 7, 8, 9, 11, 10),
				weights(name+"w", dataset, 0.1*float64(a), 0.5, 0.3, float64(d)),
				weights(name+"w", dataset, 0.2, 0.4, 0.3, float64(d)),
			)
		}
	}

	opts := Options{EvaluateAt: []int{1, 2, 5, 10}}
	agg := newTestAggregator()

	sequential, err := agg.Evaluate(context.Background(), records, opts)
	if err != nil {
		t.Fatal(err)
	}
	opts.Workers = 4
	parallel, err := agg.Evaluate(context.Background(), records, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sequential, parallel) {
		t.Error("parallel evaluation differs from sequential evaluation")
	}
}

func TestSummarize(t *testing.T) {
	complete := []models.StabilityRecord{
		{Name: "A", Dataset: "d1", Feats: 10, Selected: 5, Executions: 3,
			Metrics: models.MetricValues{models.MetricJaccard: 0.5, models.MetricPearson: 0.9}},
		{Name: "A", Dataset: "d2", Feats: 20, Selected: 5, Executions: 2,
			Metrics: models.MetricValues{models.MetricJaccard: 1}},
		{Name: "A", Dataset: "d1", Feats: 10, Selected: 2, Executions: 3,
			Metrics: models.MetricValues{models.MetricJaccard: 0.25}},
	}

	got := Summarize(complete)
	if len(got) != 2 {
		t.Fatalf("len(Summarize) = %d, want 2", len(got))
	}
	if got[0].Selected != 2 || got[1].Selected != 5 {
		t.Errorf("summary order = %d, %d, want 2, 5", got[0].Selected, got[1].Selected)
	}

	s := got[1]
	if s.Executions != 5 {
		t.Errorf("Executions = %d, want 5", s.Executions)
	}
	if s.Metrics[models.MetricJaccard] != 0.75 {
		t.Errorf("jaccard = %v, want 0.75", s.Metrics[models.MetricJaccard])
	}
	if s.Metrics[models.MetricPearson] != 0.9 {
		t.Errorf("pearson = %v, want 0.9 (mean of present values)", s.Metrics[models.MetricPearson])
	}
	if _, ok := s.Metrics[models.MetricSpearman]; ok {
		t.Error("spearman should stay absent")
	}
}

func TestSummarizedAlgorithmsStability(t *testing.T) {
	dir := t.TempDir()
	records := []models.Record{
		subset("A", "d", 10, models.SamplingBootstrap, 0, 1, 2),
		subset("A", "d", 10, models.SamplingBootstrap, 0, 1, 2),
		subset("A", "d", 10, models.SamplingPercent90, 0, 1, 2),
		subset("A", "d", 10, models.SamplingPercent90, 7, 8, 9),
	}
	for i := range records {
		if _, err := results.AppendRecord(&records[i], "runs", dir); err != nil {
			t.Fatal(err)
		}
	}

	bootstrap := models.SamplingBootstrap
	summary, complete, err := newTestAggregator().SummarizedAlgorithmsStability(context.Background(), dir, &bootstrap, Options{})
	if err != nil {
		t.Fatalf("SummarizedAlgorithmsStability() error: %v", err)
	}
	if len(complete) != 1 || complete[0].Executions != 2 {
		t.Fatalf("complete = %+v, want one row with 2 executions", complete)
	}
	if len(summary) != 1 || summary[0].Metrics[models.MetricJaccard] != 1 {
		t.Errorf("summary = %+v", summary)
	}

	_, complete, err = newTestAggregator().SummarizedAlgorithmsStability(context.Background(), dir, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if complete[0].Executions != 4 {
		t.Errorf("executions without sampling filter = %d, want 4", complete[0].Executions)
	}

	none := models.SamplingNone
	_, _, err = newTestAggregator().SummarizedAlgorithmsStability(context.Background(), dir, &none, Options{})
	if !errors.Is(err, models.ErrEmptyResult) {
		t.Errorf("error = %v, want ErrEmptyResult", err)
	}
}

func TestCompleteTable_RoundTrip(t *testing.T) {
	rows := []models.StabilityRecord{
		{Name: "A", Dataset: "d", Feats: 10, Selected: 3, Executions: 3,
			Metrics: models.MetricValues{models.MetricJaccard: 1.0 / 3, models.MetricKuncheva: -0.125}},
		{Name: "B", Dataset: "d", Feats: 10, Selected: 5, Executions: 2,
			Metrics: models.MetricValues{models.MetricPearson: 0.987654321, models.MetricCanberra: 0}},
	}

	var buf bytes.Buffer
	if err := CompleteTable(rows).WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	parsed, err := table.ReadCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadCompleteTable(parsed)
	if err != nil {
		t.Fatalf("ReadCompleteTable() error: %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("round trip = %+v, want %+v", got, rows)
	}
}

func TestSummaryTable_Columns(t *testing.T) {
	tbl := SummaryTable([]models.StabilitySummary{{Name: "A", Selected: 5, Executions: 4,
		Metrics: models.MetricValues{models.MetricJaccard: 1}}})

	want := []string{"name", "selected", "executions", "jaccard", "hamming", "dice", "kuncheva", "canberra", "spearman", "pearson"}
	if !reflect.DeepEqual(tbl.Columns, want) {
		t.Errorf("Columns = %v, want %v", tbl.Columns, want)
	}
	if tbl.Rows[0]["pearson"] != "" {
		t.Errorf("absent pearson rendered as %q, want empty", tbl.Rows[0]["pearson"])
	}
}
