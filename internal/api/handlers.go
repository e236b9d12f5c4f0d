// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/featstab/internal/models"
)

// Health answers the liveness probe.
func (router *Router) Health(w http.ResponseWriter, _ *http.Request) {
	router.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status returns the run report. A failed run answers 503 so probes can
// alert on it.
func (router *Router) Status(w http.ResponseWriter, _ *http.Request) {
	report := router.status.Status()
	code := http.StatusOK
	if report.State == models.RunFailed {
		code = http.StatusServiceUnavailable
	}
	router.writeJSON(w, code, report)
}

func (router *Router) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		router.logger.Error().Err(err).Msg("Failed to encode response")
	}
}
