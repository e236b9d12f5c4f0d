// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

/*
Package services adapts featstab components to suture.Service.

HTTPServerService runs the status server: ListenAndServe in a goroutine,
graceful Shutdown when the supervisor context is canceled.

JobService runs a one-shot evaluation. The job is never restarted: its
outcome is deterministic for a given input, so a failure would only repeat.
Completion is published on Done so the caller can stop the tree.
*/
package services
