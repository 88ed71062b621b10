// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

// Package recommend implements the hybrid perfume recommendation engine.
//
// The pipeline combines two independent scorers over the catalog:
//
//   - The lexical scorer builds weighted TF-IDF documents per perfume and
//     matches a rarity-weighted keyword query against them.
//   - The semantic scorer embeds layered text representations of each
//     perfume and measures multi-layer cosine similarity against
//     embedded query sentences.
//
// Their result sets are fused with a dynamically chosen blend weight,
// then re-ranked by a Maximal-Marginal-Relevance diversity selector that
// trades raw relevance against brand, note, description, scent-family
// and price-tier redundancy. The Engine orchestrates the stages per
// request and degrades gracefully: a failing scorer falls back to the
// surviving one, and a fully empty pipeline yields an empty result set
// rather than an error.
//
// The catalog table, weighted documents and embedding records are built
// once at startup and shared read-only across concurrent requests. All
// per-request state is owned by the request.
package recommend
