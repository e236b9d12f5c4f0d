// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package stability

import (
	"fmt"
	"sort"

	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/table"
)

type summaryKey struct {
	name     string
	selected int
}

// Summarize averages the complete table across datasets: one row per
// (name, selected), executions summed, every metric the mean of its present
// values. A metric absent from every row of a summary stays absent.
func Summarize(complete []models.StabilityRecord) []models.StabilitySummary {
	type acc struct {
		executions int
		sums       map[models.Metric]float64
		counts     map[models.Metric]int
	}
	groups := make(map[summaryKey]*acc)

	for i := range complete {
		row := &complete[i]
		key := summaryKey{row.Name, row.Selected}
		g, ok := groups[key]
		if !ok {
			g = &acc{sums: make(map[models.Metric]float64), counts: make(map[models.Metric]int)}
			groups[key] = g
		}
		g.executions += row.Executions
		for m, v := range row.Metrics {
			g.sums[m] += v
			g.counts[m]++
		}
	}

	out := make([]models.StabilitySummary, 0, len(groups))
	for key, g := range groups {
		means := make(models.MetricValues, len(g.sums))
		for m, sum := range g.sums {
			means[m] = sum / float64(g.counts[m])
		}
		out = append(out, models.StabilitySummary{
			Name:       key.name,
			Selected:   key.selected,
			Executions: g.executions,
			Metrics:    means,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Selected < out[j].Selected
	})
	return out
}

// CompleteTable renders complete stability rows. Absent metrics are empty
// cells.
func CompleteTable(rows []models.StabilityRecord) *table.Table {
	t := table.New(append([]string{
		models.ColName, models.ColDataset, models.ColFeats, models.ColSelected, models.ColExecutions,
	}, metricColumns()...)...)
	for i := range rows {
		r := &rows[i]
		row := table.Row{
			models.ColName:       r.Name,
			models.ColDataset:    r.Dataset,
			models.ColFeats:      table.FormatInt(r.Feats),
			models.ColSelected:   table.FormatInt(r.Selected),
			models.ColExecutions: table.FormatInt(r.Executions),
		}
		putMetrics(row, r.Metrics)
		t.Append(row)
	}
	return t
}

// SummaryTable renders summarized stability rows.
func SummaryTable(rows []models.StabilitySummary) *table.Table {
	t := table.New(append([]string{
		models.ColName, models.ColSelected, models.ColExecutions,
	}, metricColumns()...)...)
	for i := range rows {
		r := &rows[i]
		row := table.Row{
			models.ColName:       r.Name,
			models.ColSelected:   table.FormatInt(r.Selected),
			models.ColExecutions: table.FormatInt(r.Executions),
		}
		putMetrics(row, r.Metrics)
		t.Append(row)
	}
	return t
}

// ReadCompleteTable parses a table written by CompleteTable.
func ReadCompleteTable(t *table.Table) ([]models.StabilityRecord, error) {
	rows := make([]models.StabilityRecord, 0, t.Len())
	for i, row := range t.Rows {
		rec := models.StabilityRecord{
			Name:    row[models.ColName],
			Dataset: row[models.ColDataset],
		}
		var err error
		if rec.Feats, err = row.Int(models.ColFeats); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", models.ErrInvalidFormat, i+1, err)
		}
		if rec.Selected, err = row.Int(models.ColSelected); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", models.ErrInvalidFormat, i+1, err)
		}
		if rec.Executions, err = row.Int(models.ColExecutions); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", models.ErrInvalidFormat, i+1, err)
		}
		rec.Metrics = make(models.MetricValues)
		for _, m := range models.Metrics() {
			v, ok, err := row.Float(string(m))
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", models.ErrInvalidFormat, i+1, err)
			}
			if ok {
				rec.Metrics[m] = v
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func metricColumns() []string {
	cols := make([]string, 0, len(models.Metrics()))
	for _, m := range models.Metrics() {
		cols = append(cols, string(m))
	}
	return cols
}

func putMetrics(row table.Row, values models.MetricValues) {
	for _, m := range models.Metrics() {
		if v, ok := values[m]; ok {
			row[string(m)] = table.FormatFloat(v)
		}
	}
}
