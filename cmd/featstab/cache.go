// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/featstab/internal/cache"
)

func (c *cli) newCacheCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the classifier score cache",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "cache directory (default: configured cache.path)")

	open := func(cmd *cobra.Command) (*cache.ScoreCache, error) {
		cfg := c.cfg.Cache
		if cmd.Flags().Changed("path") {
			cfg.Path = path
		}
		return cache.Open(&cfg, c.logger)
	}

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Drop every cached classifier score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scores, err := open(cmd)
			if err != nil {
				return err
			}
			defer scores.Close()

			n, err := scores.Len()
			if err != nil {
				return err
			}
			if err := scores.Purge(); err != nil {
				return fmt.Errorf("purge score cache: %w", err)
			}
			c.logger.Info().Int("entries", n).Msg("Score cache purged")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "purged %d cached scores\n", n)
			return nil
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Count cached classifier scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scores, err := open(cmd)
			if err != nil {
				return err
			}
			defer scores.Close()

			n, err := scores.Len()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d cached scores\n", n)
			return nil
		},
	}

	cmd.AddCommand(purge, stats)
	return cmd
}
