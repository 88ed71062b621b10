// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

// Package models defines the request and response types of the HTTP
// API. Validation rules live in struct tags and are enforced by the
// handlers.
package models
