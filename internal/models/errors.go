// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package models

import "errors"

var (
	// ErrNotFound is returned for a missing results location or an unknown dataset.
	ErrNotFound = errors.New("not found")

	// ErrInvalidFormat is returned for a file without the .csv extension or a
	// directory that holds no result tables.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidArgument is returned for values outside a closed enumeration
	// and for records that violate the row schema.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyResult is returned when a filter matches no rows.
	ErrEmptyResult = errors.New("empty result")

	// ErrNoScorableResults is returned when none of the three result encodings
	// could be loaded and scored.
	ErrNoScorableResults = errors.New("no scorable results")
)
