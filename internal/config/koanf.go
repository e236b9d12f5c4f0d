// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"featstab.yaml",
	"featstab.yml",
	"/etc/featstab/config.yaml",
	"/etc/featstab/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultEvaluateAt are the cutoffs used when none are configured.
var DefaultEvaluateAt = []int{5, 10, 20, 50, 100, 200}

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Results: ResultsConfig{
			Path: "results",
		},
		Datasets: DatasetsConfig{
			BasePath:    "datasets",
			Files:       map[string]string{},
			LabelColumn: "type",
			DropColumns: []string{"samples"},
			Normalize:   true,
		},
		Evaluation: EvaluationConfig{
			EvaluateAt:            append([]int(nil), DefaultEvaluateAt...),
			Workers:               0, // 0 = use runtime.NumCPU()
			EvaluateAtAllFeatures: false,
			Samplings:             []string{"bootstrap", "percent90"},
			Determinism:           true,
		},
		Scoring: ScoringConfig{
			Enabled:         true,
			Folds:           5,
			Seed:            42,
			Metrics:         []string{"macro_f1"},
			Trees:           100,
			MaxDepth:        0,
			MinSamplesSplit: 2,
			SVMLambda:       0,
			SVMEpochs:       20,
		},
		Cache: CacheConfig{
			Enabled:       false, // Opt-in: scores depend on dataset files that may change
			Path:          ".featstab/cache",
			MemoryEntries: 4096,
		},
		Output: OutputConfig{
			Dir:         "evaluation",
			Timestamped: true,
		},
		Database: DatabaseConfig{
			Path:      "", // DuckDB export disabled by default
			MaxMemory: "1GB",
			Threads:   0,
		},
		Server: ServerConfig{
			Enabled:           false,
			Host:              "127.0.0.1",
			Port:              9464,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{},
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
			StreamInterval:    time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Caller: false,
		},
	}
}

// Default returns the built-in configuration without consulting files or
// the environment.
func Default() *Config {
	return defaultConfig()
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
//
// explicitPath, when non-empty, takes precedence over CONFIG_PATH and the
// default search paths and must exist.
func LoadWithKoanf(explicitPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := explicitPath
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
	} else {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// FEATSTAB_RESULTS_PATH -> results.path
	// FEATSTAB_EVALUATE_AT  -> evaluation.evaluate_at
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"datasets.drop_columns",
	"evaluation.evaluate_at",
	"evaluation.samplings",
	"scoring.metrics",
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok {
			// Already a slice (defaults or YAML)
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Only mapped variables are loaded so unrelated environment does not leak
// into the configuration.
//
// Examples:
//   - FEATSTAB_RESULTS_PATH -> results.path
//   - FEATSTAB_WORKERS -> evaluation.workers
//   - DUCKDB_PATH -> database.path
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Results and datasets
		"featstab_results_path":   "results.path",
		"featstab_datasets_path":  "datasets.base_path",
		"featstab_label_column":   "datasets.label_column",
		"featstab_drop_columns":   "datasets.drop_columns",
		"featstab_normalize":      "datasets.normalize",
		"featstab_output_dir":     "output.dir",
		"featstab_output_stamped": "output.timestamped",

		// Evaluation mappings
		"featstab_evaluate_at":              "evaluation.evaluate_at",
		"featstab_workers":                  "evaluation.workers",
		"featstab_evaluate_at_all_features": "evaluation.evaluate_at_all_features",
		"featstab_samplings":                "evaluation.samplings",
		"featstab_determinism":              "evaluation.determinism",

		// Scoring mappings
		"featstab_scoring_enabled": "scoring.enabled",
		"featstab_folds":           "scoring.folds",
		"featstab_seed":            "scoring.seed",
		"featstab_scoring_metrics": "scoring.metrics",
		"featstab_forest_trees":    "scoring.trees",
		"featstab_tree_max_depth":  "scoring.max_depth",
		"featstab_svm_lambda":      "scoring.svm_lambda",
		"featstab_svm_epochs":      "scoring.svm_epochs",

		// Score cache mappings
		"featstab_cache_enabled": "cache.enabled",
		"featstab_cache_path":    "cache.path",
		"featstab_cache_entries": "cache.memory_entries",

		// Database mappings
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",

		// Server mappings
		"featstab_server_enabled": "server.enabled",
		"http_host":               "server.host",
		"http_port":               "server.port",
		"http_shutdown_timeout":   "server.shutdown_timeout",
		"http_cors_origins":       "server.cors_origins",
		"http_rate_limit":         "server.rate_limit_requests",
		"http_rate_limit_window":  "server.rate_limit_window",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	return ""
}
