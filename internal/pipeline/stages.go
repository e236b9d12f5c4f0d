// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package pipeline

import (
	"fmt"
	"strings"

	"github.com/tomtom215/featstab/internal/models"
)

// Stage is one step of an evaluation run.
type Stage string

const (
	StageScoring     Stage = "scoring"
	StageStability   Stage = "stability"
	StageDeterminism Stage = "determinism"
	StageTimes       Stage = "times"
)

// AllStages returns every stage in execution order.
func AllStages() []Stage {
	return []Stage{StageScoring, StageStability, StageDeterminism, StageTimes}
}

// ParseStage converts a stage name, case-insensitively.
func ParseStage(s string) (Stage, error) {
	for _, st := range AllStages() {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: stage %q", models.ErrInvalidArgument, s)
}

// stageSet records which stages a run executes. An empty selection means all.
type stageSet map[Stage]bool

func newStageSet(stages []Stage) stageSet {
	set := make(stageSet, len(AllStages()))
	if len(stages) == 0 {
		stages = AllStages()
	}
	for _, st := range stages {
		set[st] = true
	}
	return set
}

// tableName maps an output file stem to its table key, e.g.
// "stability-bootstrap-complete" to "stability_bootstrap_complete".
func tableName(stem string) string {
	return strings.ReplaceAll(stem, "-", "_")
}
