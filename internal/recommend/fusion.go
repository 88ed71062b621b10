// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/perfumeonme/aromatch/internal/catalog"
	"github.com/perfumeonme/aromatch/internal/logging"
	"github.com/perfumeonme/aromatch/internal/metrics"
)

// Fuser merges the two scorers' result sets into one blended candidate
// list. The lexical share α of the blend is chosen dynamically from
// how much lexical signal the query produced.
type Fuser struct {
	cfg    *Config
	logger zerolog.Logger
}

// NewFuser creates a Fuser.
func NewFuser(cfg *Config) *Fuser {
	return &Fuser{
		cfg:    cfg,
		logger: logging.With().Str("component", "recommend.fusion").Logger(),
	}
}

// BlendWeight picks α from the lexical average similarity: strong
// lexical signal earns a higher share, weak signal leans on semantic.
func (f *Fuser) BlendWeight(lexicalAvg float64) float64 {
	switch {
	case lexicalAvg > 2*f.cfg.ValidityThreshold:
		return f.cfg.AlphaHigh
	case lexicalAvg > f.cfg.ValidityThreshold:
		return f.cfg.Alpha
	default:
		return f.cfg.AlphaLow
	}
}

// Fuse merges the result sets, keeping at most limit candidates sorted
// by blended score. Single-source degradation is handled before any
// blending: a zero lexical average means "no lexical signal" and the
// semantic results pass through untouched, and vice versa when the
// semantic side is empty. Neither case is an error.
func (f *Fuser) Fuse(lexical, semantic ResultSet, limit int) ([]Candidate, []SkipDiagnostic) {
	if lexical.AverageSimilarity == 0 {
		metrics.FusionFallbacks.Inc()
		f.logger.Debug().Msg("no lexical signal, passing semantic results through")
		return truncate(semantic.Results, limit), nil
	}
	if semantic.IsEmpty() {
		metrics.FusionFallbacks.Inc()
		f.logger.Debug().Msg("no semantic results, passing lexical results through")
		return truncate(lexical.Results, limit), nil
	}

	alpha := f.BlendWeight(lexical.AverageSimilarity)

	var skipped []SkipDiagnostic
	lexScores := make(map[catalog.Key]float64, len(lexical.Results))
	semScores := make(map[catalog.Key]float64, len(semantic.Results))
	records := make(map[catalog.Key]Candidate, len(lexical.Results)+len(semantic.Results))

	collect := func(source string, results []Candidate, scores map[catalog.Key]float64) {
		for _, c := range results {
			if c.Key.Brand == "" || c.Key.Name == "" {
				skipped = append(skipped, SkipDiagnostic{
					Stage:  "fusion",
					Key:    c.Key,
					Reason: "candidate missing brand or name",
				})
				f.logger.Warn().
					Str("source", source).
					Str("key", c.Key.String()).
					Msg("skipping malformed fusion candidate")
				continue
			}
			scores[c.Key] = c.Similarity
			if _, ok := records[c.Key]; !ok {
				records[c.Key] = c
			}
		}
	}
	collect("lexical", lexical.Results, lexScores)
	collect("semantic", semantic.Results, semScores)

	fused := make([]Candidate, 0, len(records))
	for key, record := range records {
		// A side missing the key contributes exactly 0.
		blended := alpha*lexScores[key] + (1-alpha)*semScores[key]
		record.Similarity = blended
		fused = append(fused, record)
	}

	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].Similarity != fused[j].Similarity {
			return fused[i].Similarity > fused[j].Similarity
		}
		// Deterministic order for equal scores.
		if fused[i].Key.Brand != fused[j].Key.Brand {
			return fused[i].Key.Brand < fused[j].Key.Brand
		}
		return fused[i].Key.Name < fused[j].Key.Name
	})

	return truncate(fused, limit), skipped
}

func truncate(results []Candidate, limit int) []Candidate {
	if limit >= 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
