// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

// Validation is used at two boundaries: decoding result rows into
// models.Record, and checking the evaluation section of the configuration.
// Both report *StructError, which matches models.ErrInvalidArgument.
package validation
