// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package results

import (
	"fmt"

	"github.com/tomtom215/featstab/internal/models"
	"github.com/tomtom215/featstab/internal/table"
	"github.com/tomtom215/featstab/internal/validation"
)

// DecodeRecords converts result rows into records. The first malformed row
// fails the whole table with models.ErrInvalidArgument; the error names the
// row and the offending value.
func DecodeRecords(t *table.Table) ([]models.Record, error) {
	for _, col := range models.ResultColumns() {
		if col == models.ColProcessingTime {
			continue
		}
		if !t.HasColumn(col) {
			return nil, fmt.Errorf("%w: missing column %q", models.ErrInvalidFormat, col)
		}
	}

	records := make([]models.Record, 0, t.Len())
	for i, row := range t.Rows {
		rec, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s/%s): %w", i+1, row[models.ColName], row[models.ColDatasetName], err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRow(row table.Row) (models.Record, error) {
	var rec models.Record
	var err error

	rec.Name = row[models.ColName]
	rec.DatasetName = row[models.ColDatasetName]

	if rec.ResultType, err = models.ParseResultType(row[models.ColResultType]); err != nil {
		return rec, err
	}
	if rec.Sampling, err = models.ParseSampling(row[models.ColSampling]); err != nil {
		return rec, err
	}
	if rec.NumFeatures, err = row.Int(models.ColNumFeatures); err != nil {
		return rec, fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
	}
	if rec.NumSelected, err = row.Int(models.ColNumSelected); err != nil {
		return rec, fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
	}
	if pt, ok, perr := row.Float(models.ColProcessingTime); perr != nil {
		return rec, fmt.Errorf("%w: %v", models.ErrInvalidArgument, perr)
	} else if ok {
		rec.ProcessingTime = pt
	}

	if err := validation.ValidateStruct(&rec); err != nil {
		return rec, err
	}
	if err := rec.DecodeValues(row[models.ColValues]); err != nil {
		return rec, err
	}
	return rec, nil
}

// EncodeRecords builds a result table in the row schema column order.
func EncodeRecords(records []models.Record) (*table.Table, error) {
	t := table.New(models.ResultColumns()...)
	for i := range records {
		rec := &records[i]
		values, err := rec.EncodeValues()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		t.Append(table.Row{
			models.ColName:           rec.Name,
			models.ColDatasetName:    rec.DatasetName,
			models.ColResultType:     string(rec.ResultType),
			models.ColSampling:       string(rec.Sampling),
			models.ColNumFeatures:    table.FormatInt(rec.NumFeatures),
			models.ColNumSelected:    table.FormatInt(rec.NumSelected),
			models.ColProcessingTime: table.FormatFloat(rec.ProcessingTime),
			models.ColValues:         values,
		})
	}
	return t, nil
}

// LoadRecords loads and decodes every record at location.
func LoadRecords(location string) ([]models.Record, error) {
	t, err := LoadAll(location)
	if err != nil {
		return nil, err
	}
	return DecodeRecords(t)
}
