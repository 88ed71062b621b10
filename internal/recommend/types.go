// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import (
	"context"
	"strings"

	"github.com/perfumeonme/aromatch/internal/catalog"
)

// Query is one recommendation request: five ordered free-text keywords
// describing the mood the user wants a perfume for.
type Query struct {
	Ambience    string `json:"ambience"`
	Style       string `json:"style"`
	Gender      string `json:"gender"`
	Season      string `json:"season"`
	Personality string `json:"personality"`
}

// Keywords returns the five keywords in their fixed order. Order
// matters: related-keyword ties are broken by input position.
func (q Query) Keywords() []string {
	return []string{q.Ambience, q.Style, q.Gender, q.Season, q.Personality}
}

// IsEmpty reports whether every keyword is blank.
func (q Query) IsEmpty() bool {
	for _, kw := range q.Keywords() {
		if strings.TrimSpace(kw) != "" {
			return false
		}
	}
	return true
}

// Candidate is a scored perfume flowing through the pipeline. Scorers
// create candidates, fusion overwrites Similarity with the blended
// value, and the diversity selector overwrites it again with the
// MMR-adjusted value.
type Candidate struct {
	Key        catalog.Key `json:"-"`
	Similarity float64     `json:"similarity"`

	Brand       string `json:"brand"`
	Name        string `json:"name"`
	TopNote     string `json:"topNote"`
	MiddleNote  string `json:"middleNote"`
	BaseNote    string `json:"baseNote"`
	Description string `json:"description"`

	RelatedKeywords []string `json:"relatedKeywords"`

	ImageURL          string `json:"imageUrl"`
	RemovedBgImageURL string `json:"removebgImageUrl,omitempty"`

	// Row is the candidate's catalog row index, used for score-model
	// lookups during keyword re-annotation. Negative when unknown.
	Row int `json:"-"`
}

// newCandidate copies the output fields of a catalog item.
func newCandidate(it catalog.Item, row int, similarity float64) Candidate {
	return Candidate{
		Key:               it.Key(),
		Similarity:        similarity,
		Brand:             it.Brand,
		Name:              it.Name,
		TopNote:           it.TopNoteKeywords,
		MiddleNote:        it.MiddleNoteKeywords,
		BaseNote:          it.BaseNoteKeywords,
		Description:       it.DisplayDescription(),
		ImageURL:          it.ImageURL,
		RemovedBgImageURL: it.RemovedBgImageURL,
		Row:               row,
	}
}

// NoteText joins the candidate's three note fields.
func (c Candidate) NoteText() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{c.TopNote, c.MiddleNote, c.BaseNote} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// SkipDiagnostic records a candidate that was dropped during
// processing, with the stage and reason. Skips are collected and
// returned alongside results instead of being silently swallowed.
type SkipDiagnostic struct {
	Stage  string      `json:"stage"`
	Key    catalog.Key `json:"-"`
	Reason string      `json:"reason"`
}

// DiversityDiagnostics summarizes the diversity selector's outcome.
type DiversityDiagnostics struct {
	// Score is the composite diversity score of the returned set.
	Score float64 `json:"score"`

	// AlternativeUsed is true when validation failed and the
	// semantic-only alternative pass produced a strictly better set.
	AlternativeUsed bool `json:"alternativeUsed"`

	// Seed is the RNG seed used for this request, 0 when
	// randomization is disabled.
	Seed int64 `json:"-"`
}

// ResultSet is the ranked output of a scorer or of the full pipeline.
type ResultSet struct {
	AverageSimilarity float64               `json:"average_similarity"`
	Results           []Candidate           `json:"results"`
	Skipped           []SkipDiagnostic      `json:"-"`
	Diversity         *DiversityDiagnostics `json:"-"`
}

// EmptyResultSet is the zero-result sentinel: average similarity 0 and
// no candidates. Fusion treats it as "no signal from this source".
func EmptyResultSet() ResultSet {
	return ResultSet{AverageSimilarity: 0, Results: []Candidate{}}
}

// IsEmpty reports whether the set holds no candidates.
func (rs ResultSet) IsEmpty() bool {
	return len(rs.Results) == 0
}

// Scorer ranks catalog items against a query. Implementations share no
// mutable state across calls, so a single Scorer serves concurrent
// requests.
type Scorer interface {
	// Name identifies the scorer in logs and metrics.
	Name() string

	// Score returns up to topN candidates ranked by similarity.
	// An empty result set with average similarity 0 means "no
	// signal", not an error.
	Score(ctx context.Context, q Query, topN int) (ResultSet, error)
}

func meanSimilarity(results []Candidate) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range results {
		sum += r.Similarity
	}
	return sum / float64(len(results))
}
