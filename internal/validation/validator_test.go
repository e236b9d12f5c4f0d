// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/featstab/internal/models"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

func validRecord() models.Record {
	return models.Record{
		Name:           "relief",
		DatasetName:    "iris",
		ResultType:     models.ResultRank,
		Sampling:       models.SamplingBootstrap,
		NumFeatures:    4,
		NumSelected:    4,
		ProcessingTime: 0.12,
	}
}

func TestValidateStruct_Record(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *models.Record)
		wantField string
	}{
		{name: "valid record"},
		{
			name:      "missing name",
			mutate:    func(r *models.Record) { r.Name = "" },
			wantField: "Name",
		},
		{
			name:      "unknown result type",
			mutate:    func(r *models.Record) { r.ResultType = "ranking" },
			wantField: "ResultType",
		},
		{
			name:      "unknown sampling",
			mutate:    func(r *models.Record) { r.Sampling = "jackknife" },
			wantField: "Sampling",
		},
		{
			name:      "zero features",
			mutate:    func(r *models.Record) { r.NumFeatures = 0 },
			wantField: "NumFeatures",
		},
		{
			name:      "negative processing time",
			mutate:    func(r *models.Record) { r.ProcessingTime = -1 },
			wantField: "ProcessingTime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			if tt.mutate != nil {
				tt.mutate(&rec)
			}

			err := ValidateStruct(&rec)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, models.ErrInvalidArgument) {
				t.Fatalf("ValidateStruct() error = %v, want ErrInvalidArgument", err)
			}
			var se *StructError
			if !errors.As(err, &se) {
				t.Fatalf("ValidateStruct() error type = %T, want *StructError", err)
			}
			if got := se.Errors()[0].Field(); got != tt.wantField {
				t.Errorf("Field() = %q, want %q", got, tt.wantField)
			}
		})
	}
}

type cutoffRequest struct {
	EvaluateAt []int `validate:"cutoffs"`
}

func TestValidateStruct_Cutoffs(t *testing.T) {
	tests := []struct {
		name    string
		cutoffs []int
		wantErr bool
	}{
		{"defaults", []int{5, 10, 20, 50, 100, 200}, false},
		{"single", []int{1}, false},
		{"empty", nil, true},
		{"zero", []int{0, 5}, true},
		{"duplicate", []int{5, 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&cutoffRequest{EvaluateAt: tt.cutoffs})
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateStruct(%v) error = %v, wantErr %v", tt.cutoffs, err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "distinct positive cutoffs") {
				t.Errorf("error message = %q", err.Error())
			}
		})
	}
}

func TestStructError_Error(t *testing.T) {
	se := &StructError{}
	if se.Error() != "validation failed" {
		t.Errorf("empty StructError.Error() = %q", se.Error())
	}

	se = &StructError{errors: []ValidationError{
		{field: "A", message: "A is required"},
		{field: "B", message: "B must be at least 1"},
	}}
	if got := se.Error(); got != "A is required; B must be at least 1" {
		t.Errorf("Error() = %q", got)
	}
}
