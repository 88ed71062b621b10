// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

// Package api provides HTTP routing and handlers using the Chi router.
//
// Endpoints:
//   - POST /api/v1/recommendations       keyword query → scenario + ranked perfumes
//   - POST /api/v1/persona/result        quiz answers → persona analysis + perfumes
//   - GET  /api/v1/recommendations/config  active pipeline settings
//   - GET  /healthz                      liveness and readiness
//   - GET  /metrics                      Prometheus exposition
package api
