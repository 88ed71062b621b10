// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/perfumeonme/aromatch/internal/config"
	"github.com/perfumeonme/aromatch/internal/middleware"
)

// NewRouter wires the middleware stack and all routes.
func NewRouter(cfg *config.Config, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.Server.RateLimitReqs, cfg.Server.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.Compression)

		r.Post("/recommendations", h.Recommendations)
		r.Get("/recommendations/config", h.RecommendConfig)
		r.Post("/persona/result", h.PersonaResult)
	})

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
