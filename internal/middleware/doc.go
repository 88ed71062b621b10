// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

// Package middleware provides HTTP middleware shared by all routes:
// request ID propagation, Prometheus instrumentation, and response
// compression.
package middleware
