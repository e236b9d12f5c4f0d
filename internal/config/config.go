// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

// Package config loads featstab configuration with Koanf v2.
//
// Sources are layered, highest priority last:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, featstab.yaml, /etc/featstab/config.yaml)
//  3. Environment variables (explicit mapping, see envTransformFunc)
//
// The command line applies its flags on top of the loaded Config before
// calling Validate again.
package config

import (
	"runtime"
	"time"

	"github.com/tomtom215/featstab/internal/models"
)

// Config is the complete featstab configuration.
type Config struct {
	Results    ResultsConfig    `koanf:"results"`
	Datasets   DatasetsConfig   `koanf:"datasets"`
	Evaluation EvaluationConfig `koanf:"evaluation"`
	Scoring    ScoringConfig    `koanf:"scoring"`
	Cache      CacheConfig      `koanf:"cache"`
	Output     OutputConfig     `koanf:"output"`
	Database   DatabaseConfig   `koanf:"database"`
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ResultsConfig locates the recorded result rows.
type ResultsConfig struct {
	// Path is a single .csv file or a directory tree of .csv files.
	Path string `koanf:"path"`
}

// DatasetsConfig describes the dataset repository used by the scorer.
type DatasetsConfig struct {
	// BasePath is the directory holding the dataset csv files.
	BasePath string `koanf:"base_path"`

	// Files maps dataset name to a path relative to BasePath. When empty,
	// every .csv file under BasePath is loaded under its file stem.
	Files map[string]string `koanf:"files"`

	// LabelColumn names the class label column.
	LabelColumn string `koanf:"label_column"`

	// DropColumns are removed before building the feature matrix.
	DropColumns []string `koanf:"drop_columns"`

	// Normalize min-max scales every feature column when loading.
	Normalize bool `koanf:"normalize"`
}

// EvaluationConfig controls stability evaluation.
type EvaluationConfig struct {
	// EvaluateAt are the cutoffs k applied to rank and weights results.
	EvaluateAt []int `koanf:"evaluate_at" validate:"cutoffs"`

	// Workers bounds parallel group evaluation. 0 = runtime.NumCPU().
	Workers int `koanf:"workers" validate:"min=0"`

	// EvaluateAtAllFeatures adds k = num_selected when it equals num_features.
	EvaluateAtAllFeatures bool `koanf:"evaluate_at_all_features"`

	// Samplings are the resampling schemes evaluated for stability.
	Samplings []string `koanf:"samplings" validate:"dive,sampling"`

	// Determinism also evaluates stability of sampling=none runs.
	Determinism bool `koanf:"determinism"`
}

// ScoringConfig controls the classification quality scorer.
type ScoringConfig struct {
	Enabled bool `koanf:"enabled"`

	// Folds is the number of stratified cross-validation folds.
	Folds int `koanf:"folds" validate:"min=2"`

	// Seed makes the stochastic classifiers reproducible.
	Seed int64 `koanf:"seed"`

	// Metrics are the fold-averaged metrics reported per classifier.
	Metrics []string `koanf:"metrics" validate:"required,dive,oneof=macro_f1 accuracy weighted_f1"`

	// Trees is the random forest size.
	Trees int `koanf:"trees" validate:"min=1"`

	// MaxDepth bounds tree depth. 0 = unbounded.
	MaxDepth int `koanf:"max_depth" validate:"min=0"`

	// MinSamplesSplit is the smallest node the trees will split.
	MinSamplesSplit int `koanf:"min_samples_split" validate:"min=2"`

	// SVMLambda is the regularization strength of the linear SVM.
	// 0 = 1/n_samples of the training fold.
	SVMLambda float64 `koanf:"svm_lambda" validate:"min=0"`

	// SVMEpochs is the number of passes over the training fold.
	SVMEpochs int `koanf:"svm_epochs" validate:"min=1"`
}

// CacheConfig controls the persistent score cache.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`

	// MemoryEntries bounds the in-process LRU in front of the badger store.
	MemoryEntries int `koanf:"memory_entries" validate:"min=0"`
}

// OutputConfig controls where output tables are written.
type OutputConfig struct {
	Dir string `koanf:"dir"`

	// Timestamped prefixes file names with the run start time.
	Timestamped bool `koanf:"timestamped"`
}

// DatabaseConfig enables the optional DuckDB export of every output table.
type DatabaseConfig struct {
	// Path of the DuckDB file. Empty disables the export.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// ServerConfig controls the metrics and status HTTP server.
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins are the origins allowed to read the API from a browser.
	// Empty disables CORS handling.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests per RateLimitWindow and client IP. 0 disables.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// StreamInterval is how often /status/stream checks for a changed report.
	StreamInterval time.Duration `koanf:"stream_interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// EffectiveWorkers resolves Workers, mapping 0 to the CPU count.
func (e *EvaluationConfig) EffectiveWorkers() int {
	if e.Workers <= 0 {
		return runtime.NumCPU()
	}
	return e.Workers
}

// StabilitySamplings returns the parsed sampling schemes. Validate must have
// succeeded first.
func (e *EvaluationConfig) StabilitySamplings() []models.Sampling {
	out := make([]models.Sampling, 0, len(e.Samplings))
	for _, s := range e.Samplings {
		if sm, err := models.ParseSampling(s); err == nil {
			out = append(out, sm)
		}
	}
	return out
}
