// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/featstab/internal/logging"
	"github.com/tomtom215/featstab/internal/validation"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateResults(); err != nil {
		return err
	}

	if err := c.validateEvaluation(); err != nil {
		return err
	}

	if err := c.validateScoring(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateResults() error {
	if strings.TrimSpace(c.Results.Path) == "" {
		return fmt.Errorf("FEATSTAB_RESULTS_PATH is required")
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("FEATSTAB_OUTPUT_DIR is required")
	}
	return nil
}

func (c *Config) validateEvaluation() error {
	if err := validation.ValidateStruct(&c.Evaluation); err != nil {
		return fmt.Errorf("evaluation: %w", err)
	}
	return nil
}

// validateScoring only applies when the scorer is enabled; the stability
// commands do not need datasets.
func (c *Config) validateScoring() error {
	if !c.Scoring.Enabled {
		return nil
	}

	if err := validation.ValidateStruct(&c.Scoring); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if c.Datasets.BasePath == "" {
		return fmt.Errorf("FEATSTAB_DATASETS_PATH is required when scoring is enabled")
	}
	if c.Datasets.LabelColumn == "" {
		return fmt.Errorf("FEATSTAB_LABEL_COLUMN must not be empty")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("FEATSTAB_CACHE_PATH is required when FEATSTAB_CACHE_ENABLED=true")
	}
	if err := validation.ValidateStruct(&c.Cache); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("HTTP_RATE_LIMIT_WINDOW must be positive when rate limiting is enabled, got %s", c.Server.RateLimitWindow)
	}
	if err := validation.ValidateStruct(&c.Server); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

// Addr returns the listen address of the status server.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
