// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

// Package api serves the run status and prometheus metrics over HTTP.
//
// Routes:
//
//	GET /healthz        liveness probe
//	GET /status         JSON report of the current or last evaluation run
//	GET /status/stream  websocket pushing the report whenever it changes
//	GET /metrics        prometheus exposition
//
// Requests are rate limited per client IP and, when origins are configured,
// answered with CORS headers so a dashboard can poll the status.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/featstab/internal/config"
	"github.com/tomtom215/featstab/internal/models"
)

// StatusProvider reports the state of the evaluation run.
type StatusProvider interface {
	Status() models.RunReport
}

// Router holds the handler dependencies.
type Router struct {
	status StatusProvider
	cfg    *config.ServerConfig
	logger zerolog.Logger
}

// NewRouter creates a Router reporting status.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewRouter(status StatusProvider, cfg *config.ServerConfig, logger zerolog.Logger) *Router {
	return &Router{
		status: status,
		cfg:    cfg,
		logger: logger.With().Str("component", "api").Logger(),
	}
}

// Handler builds the chi route tree.
func (router *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.requestLogging)
	r.Use(prometheusMetrics)
	if len(router.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: router.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	// Probes and scrapes are not limited.
	r.Get("/healthz", router.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if router.cfg.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(router.cfg.RateLimitRequests, router.cfg.RateLimitWindow))
		}
		r.Get("/status", router.Status)
		r.Get("/status/stream", router.StatusStream)
	})

	return r
}
