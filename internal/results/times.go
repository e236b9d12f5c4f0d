// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package results

import (
	"math"
	"sort"

	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/table"
)

// Execution time table columns.
const (
	ColMeanSeconds = "mean_seconds"
	ColMinSeconds  = "min_seconds"
	ColMaxSeconds  = "max_seconds"
)

type timesKey struct {
	name       string
	dataset    string
	resultType models.ResultType
	sampling   models.Sampling
}

// ExecutionTimes summarizes processing time per (name, dataset, result type,
// sampling), sorted by those fields.
func ExecutionTimes(records []models.Record) []models.ExecutionTimes {
	groups := make(map[timesKey]*models.ExecutionTimes)
	sums := make(map[timesKey]float64)

	for i := range records {
		rec := &records[i]
		key := timesKey{rec.Name, rec.DatasetName, rec.ResultType, rec.Sampling}
		g, ok := groups[key]
		if !ok {
			g = &models.ExecutionTimes{
				Name:       rec.Name,
				Dataset:    rec.DatasetName,
				ResultType: rec.ResultType,
				Sampling:   rec.Sampling,
				MinSeconds: math.Inf(1),
				MaxSeconds: math.Inf(-1),
			}
			groups[key] = g
		}
		g.Executions++
		sums[key] += rec.ProcessingTime
		g.MinSeconds = math.Min(g.MinSeconds, rec.ProcessingTime)
		g.MaxSeconds = math.Max(g.MaxSeconds, rec.ProcessingTime)
	}

	out := make([]models.ExecutionTimes, 0, len(groups))
	for key, g := range groups {
		g.MeanSeconds = sums[key] / float64(g.Executions)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Dataset != b.Dataset {
			return a.Dataset < b.Dataset
		}
		if a.ResultType != b.ResultType {
			return a.ResultType < b.ResultType
		}
		return a.Sampling < b.Sampling
	})
	return out
}

// TimesTable renders execution time rows.
func TimesTable(rows []models.ExecutionTimes) *table.Table {
	t := table.New(
		models.ColName, models.ColDatasetName, models.ColResultType, models.ColSampling,
		models.ColExecutions, ColMeanSeconds, ColMinSeconds, ColMaxSeconds,
	)
	for i := range rows {
		r := &rows[i]
		t.Append(table.Row{
			models.ColName:        r.Name,
			models.ColDatasetName: r.Dataset,
			models.ColResultType:  string(r.ResultType),
			models.ColSampling:    string(r.Sampling),
			models.ColExecutions:  table.FormatInt(r.Executions),
			ColMeanSeconds:        table.FormatFloat(r.MeanSeconds),
			ColMinSeconds:         table.FormatFloat(r.MinSeconds),
			ColMaxSeconds:         table.FormatFloat(r.MaxSeconds),
		})
	}
	return t
}
