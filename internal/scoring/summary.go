// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package scoring

import (
	"sort"

	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/table"
)

type summaryKey struct {
	name     string
	selected int
}

// Summarize averages score rows per (name, selected), sorted by name then
// selected. Each column is the mean over the rows where it is present.
func Summarize(complete []models.ScoreRecord) []models.ScoreSummary {
	type acc struct {
		sums   map[string]float64
		counts map[string]int
	}
	groups := make(map[summaryKey]*acc)

	for i := range complete {
		row := &complete[i]
		key := summaryKey{row.Name, row.Selected}
		g, ok := groups[key]
		if !ok {
			g = &acc{sums: make(map[string]float64), counts: make(map[string]int)}
			groups[key] = g
		}
		for col, v := range row.Scores {
			g.sums[col] += v
			g.counts[col]++
		}
	}

	out := make([]models.ScoreSummary, 0, len(groups))
	for key, g := range groups {
		means := make(map[string]float64, len(g.sums))
		for col, sum := range g.sums {
			means[col] = sum / float64(g.counts[col])
		}
		out = append(out, models.ScoreSummary{Name: key.name, Selected: key.selected, Means: means})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Selected < out[j].Selected
	})
	return out
}

// CompleteTable renders score rows: provenance first, then the score columns
// in sorted order.
func CompleteTable(rows []models.ScoreRecord) *table.Table {
	t := table.New(append([]string{
		models.ColName, models.ColProcessingTime, models.ColDataset, models.ColFeatures,
		models.ColSelected, models.ColSampling, models.ColValues,
	}, models.ScoreColumns(rows)...)...)
	for i := range rows {
		r := &rows[i]
		row := table.Row{
			models.ColName:           r.Name,
			models.ColProcessingTime: table.FormatFloat(r.ProcessingTime),
			models.ColDataset:        r.Dataset,
			models.ColFeatures:       table.FormatInt(r.Features),
			models.ColSelected:       table.FormatInt(r.Selected),
			models.ColSampling:       string(r.Sampling),
			models.ColValues:         r.Values,
		}
		for col, v := range r.Scores {
			row[col] = table.FormatFloat(v)
		}
		t.Append(row)
	}
	return t
}

// SummaryTable renders summarized score rows.
func SummaryTable(rows []models.ScoreSummary) *table.Table {
	seen := make(map[string]struct{})
	for i := range rows {
		for col := range rows[i].Means {
			seen[col] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	t := table.New(append([]string{models.ColName, models.ColSelected}, cols...)...)
	for i := range rows {
		r := &rows[i]
		row := table.Row{
			models.ColName:     r.Name,
			models.ColSelected: table.FormatInt(r.Selected),
		}
		for col, v := range r.Means {
			row[col] = table.FormatFloat(v)
		}
		t.Append(row)
	}
	return t
}
