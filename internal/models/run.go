// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package models

import "time"

// RunState is the lifecycle state of an evaluation run.
type RunState string

const (
	RunPending   RunState = "pending"
	RunRunning   RunState = "running"
	RunSucceeded RunState = "succeeded"
	RunFailed    RunState = "failed"
)

// RunReport describes an evaluation run: the tables it wrote and the
// guarded stages that failed.
type RunReport struct {
	RunID        string            `json:"run_id"`
	State        RunState          `json:"state"`
	ResultsPath  string            `json:"results_path"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   *time.Time        `json:"finished_at,omitempty"`
	Tables       map[string]string `json:"tables"`
	FailedStages []string          `json:"failed_stages"`
	Error        string            `json:"error,omitempty"`
}

// Succeeded reports whether the run finished without a fatal error.
func (r *RunReport) Succeeded() bool {
	return r.State == RunSucceeded
}
