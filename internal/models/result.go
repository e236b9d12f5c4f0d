// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"
)

// ResultType is the encoding of a feature-selection output.
type ResultType string

const (
	// ResultSubset is an unordered set of selected feature indices.
	ResultSubset ResultType = "subset"
	// ResultRank is a total ordering of feature indices by importance.
	ResultRank ResultType = "rank"
	// ResultWeights is one importance score per feature.
	ResultWeights ResultType = "weights"
)

// ResultTypes returns the allowed result types in their canonical order.
func ResultTypes() []ResultType {
	return []ResultType{ResultSubset, ResultRank, ResultWeights}
}

// ParseResultType validates s against the closed set of result types.
func ParseResultType(s string) (ResultType, error) {
	switch rt := ResultType(s); rt {
	case ResultSubset, ResultRank, ResultWeights:
		return rt, nil
	}
	return "", fmt.Errorf("%w: result_type %q, allowed values are %s",
		ErrInvalidArgument, s, joinValues(ResultTypes()))
}

// Sampling is the resampling scheme that produced an execution.
type Sampling string

const (
	// SamplingNone marks determinism runs on the full dataset.
	SamplingNone Sampling = "none"
	// SamplingBootstrap marks runs on bootstrap resamples.
	SamplingBootstrap Sampling = "bootstrap"
	// SamplingPercent90 marks runs on random 90% subsamples.
	SamplingPercent90 Sampling = "percent90"
)

// Samplings returns the allowed sampling schemes in their canonical order.
func Samplings() []Sampling {
	return []Sampling{SamplingNone, SamplingBootstrap, SamplingPercent90}
}

// ParseSampling validates s against the closed set of sampling schemes.
func ParseSampling(s string) (Sampling, error) {
	switch sm := Sampling(s); sm {
	case SamplingNone, SamplingBootstrap, SamplingPercent90:
		return sm, nil
	}
	return "", fmt.Errorf("%w: sampling %q, allowed values are %s",
		ErrInvalidArgument, s, joinValues(Samplings()))
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Result row column names, in the order the external task runner writes them.
const (
	ColName           = "name"
	ColDatasetName    = "dataset_name"
	ColResultType     = "result_type"
	ColSampling       = "sampling"
	ColNumFeatures    = "num_features"
	ColNumSelected    = "num_selected"
	ColProcessingTime = "processing_time"
	ColValues         = "values"
)

// ResultColumns lists the result row schema.
func ResultColumns() []string {
	return []string{
		ColName, ColDatasetName, ColResultType, ColSampling,
		ColNumFeatures, ColNumSelected, ColProcessingTime, ColValues,
	}
}

// Record is one recorded execution of a feature-selection method on a dataset.
//
// Exactly one of Indices or Weights is set: Indices for subset and rank
// records, Weights for weights records.
type Record struct {
	Name           string     `json:"name" validate:"required"`
	DatasetName    string     `json:"dataset_name" validate:"required"`
	ResultType     ResultType `json:"result_type" validate:"resulttype"`
	Sampling       Sampling   `json:"sampling" validate:"sampling"`
	NumFeatures    int        `json:"num_features" validate:"min=1"`
	NumSelected    int        `json:"num_selected" validate:"min=0"`
	ProcessingTime float64    `json:"processing_time" validate:"min=0"`
	Indices        []int      `json:"-"`
	Weights        []float64  `json:"-"`
}

// Len returns the length of the encoded values.
func (r *Record) Len() int {
	if r.ResultType == ResultWeights {
		return len(r.Weights)
	}
	return len(r.Indices)
}

// Key returns the result group this record belongs to.
func (r *Record) Key() GroupKey {
	return GroupKey{Name: r.Name, Dataset: r.DatasetName, NumSelected: r.NumSelected}
}

// EncodeValues serializes the record's encoding into the JSON array stored
// in the values column.
func (r *Record) EncodeValues() (string, error) {
	var (
		data []byte
		err  error
	)
	if r.ResultType == ResultWeights {
		data, err = json.Marshal(r.Weights)
	} else {
		data, err = json.Marshal(r.Indices)
	}
	if err != nil {
		return "", fmt.Errorf("encode values: %w", err)
	}
	return string(data), nil
}

// DecodeValues parses raw into the field matching the record's result type
// and checks it against the declared feature count.
func (r *Record) DecodeValues(raw string) error {
	var values []float64
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return fmt.Errorf("%w: values is not a JSON number array: %v", ErrInvalidArgument, err)
	}

	if r.ResultType == ResultWeights {
		if len(values) != r.NumFeatures {
			return fmt.Errorf("%w: %d weights for %d features", ErrInvalidArgument, len(values), r.NumFeatures)
		}
		r.Weights = values
		r.Indices = nil
		return nil
	}

	indices := make([]int, len(values))
	for i, v := range values {
		if v != math.Trunc(v) || v < 0 || int(v) >= r.NumFeatures {
			return fmt.Errorf("%w: feature index %v outside [0, %d)", ErrInvalidArgument, v, r.NumFeatures)
		}
		indices[i] = int(v)
	}
	r.Indices = indices
	r.Weights = nil
	return nil
}

// GroupKey identifies a result group: repeated executions of the same
// configuration.
type GroupKey struct {
	Name        string
	Dataset     string
	NumSelected int
}

// Less orders keys by name, then dataset, then num_selected.
func (k GroupKey) Less(o GroupKey) bool {
	if k.Name != o.Name {
		return k.Name < o.Name
	}
	if k.Dataset != o.Dataset {
		return k.Dataset < o.Dataset
	}
	return k.NumSelected < o.NumSelected
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Name, k.Dataset, k.NumSelected)
}
