// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/perfumeonme/aromatch/internal/catalog"
	"github.com/perfumeonme/aromatch/internal/logging"
	"github.com/perfumeonme/aromatch/internal/metrics"
)

// LexicalScorer ranks perfumes by weighted term overlap. Each catalog
// item becomes a weighted document in which high-signal fields (core
// keywords, description) are repeated more often than low-signal ones
// (brand, context). The query repeats each user keyword by a rarity
// weight, so rare specific keywords dominate generic ones.
type LexicalScorer struct {
	table *catalog.Table
	cfg   *Config
	vec   *tfidfVectorizer

	// docs are the lowercased weighted documents, kept for keyword
	// rarity estimation by substring match.
	docs []string

	logger zerolog.Logger
}

// NewLexicalScorer fits the term model over the catalog. Fitting is the
// expensive part and happens once; the returned scorer is immutable
// and safe for concurrent use.
func NewLexicalScorer(table *catalog.Table, cfg *Config) *LexicalScorer {
	docs := make([]string, table.Len())
	for i := 0; i < table.Len(); i++ {
		docs[i] = strings.ToLower(buildWeightedDocument(table.At(i), cfg))
	}

	s := &LexicalScorer{
		table:  table,
		cfg:    cfg,
		vec:    fitTFIDF(docs, cfg.MaxFeatures),
		docs:   docs,
		logger: logging.With().Str("component", "recommend.lexical").Logger(),
	}

	s.logger.Info().
		Int("documents", len(docs)).
		Int("vocabulary", len(s.vec.terms)).
		Msg("lexical scorer fitted")

	return s
}

// buildWeightedDocument concatenates catalog fields with per-field
// repetition counts. Repetition approximates term weight in the tf
// model. Fractional weights truncate, matching the repetition counts
// the scoring was tuned against.
func buildWeightedDocument(it catalog.Item, cfg *Config) string {
	var b strings.Builder

	repeat := func(text string, weight float64) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		for i := 0; i < int(weight); i++ {
			b.WriteString(text)
			b.WriteByte(' ')
		}
	}

	repeat(it.CoreKeywords, cfg.WeightCoreKeywords)
	repeat(it.Description, cfg.WeightDescription)
	repeat(it.NoteDescriptions(), cfg.WeightNotes)
	repeat(it.Brand, cfg.WeightBrand)
	repeat(strings.TrimSpace(it.Gender+" "+it.Season+" "+it.Place), cfg.WeightContext)
	repeat(it.NoteKeywords(), 1)

	return strings.TrimSpace(b.String())
}

// Name implements Scorer.
func (s *LexicalScorer) Name() string { return "lexical" }

// Score implements Scorer. A query with no vocabulary overlap returns
// the empty sentinel (average similarity 0), which fusion treats as
// "no lexical signal".
func (s *LexicalScorer) Score(ctx context.Context, q Query, topN int) (ResultSet, error) {
	start := time.Now()
	defer func() {
		metrics.RecordScorerPass("lexical", time.Since(start))
	}()

	keywords := q.Keywords()
	weights := s.rarityWeights(keywords)
	queryVec := s.vec.transform(s.weightedQuery(keywords, weights))

	if len(queryVec) == 0 {
		s.logger.Debug().
			Strs("keywords", keywords).
			Msg("query has no vocabulary overlap, returning empty sentinel")
		return EmptyResultSet(), nil
	}

	// Base score per item: cosine similarity plus categorical bonuses.
	type scored struct {
		row   int
		score float64
	}
	scores := make([]scored, s.table.Len())
	for i := 0; i < s.table.Len(); i++ {
		it := s.table.At(i)
		score := cosine(queryVec, s.vec.docVector(i))
		if containsFold(it.Gender, q.Gender) {
			score += s.cfg.ContextBonus
		}
		if containsFold(it.Season, q.Season) {
			score += s.cfg.ContextBonus
		}
		scores[i] = scored{row: i, score: score}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	poolSize := topN * s.cfg.CandidatePoolFactor
	if poolSize > len(scores) {
		poolSize = len(scores)
	}
	pool := scores[:poolSize]

	// Greedy fill with a diversity penalty. The first
	// LexicalGuaranteedMin slots are never penalized away, so the
	// penalty can thin results but not empty them.
	results := make([]Candidate, 0, topN)
	accepted := make(map[int]struct{}, topN)
	for _, sc := range pool {
		if len(results) >= topN {
			break
		}
		cand := newCandidate(s.table.At(sc.row), sc.row, sc.score)
		cand.RelatedKeywords = s.relatedKeywords(sc.row, keywords, weights)

		adjusted := sc.score - s.diversityPenalty(results, cand)
		if adjusted > s.cfg.LexicalMinScore || len(results) < s.cfg.LexicalGuaranteedMin {
			cand.Similarity = adjusted
			results = append(results, cand)
			accepted[sc.row] = struct{}{}
		}
	}

	// Backfill from the unaccepted leftovers, highest base score
	// first, without penalties.
	if len(results) < topN {
		for _, sc := range pool {
			if len(results) >= topN {
				break
			}
			if _, ok := accepted[sc.row]; ok {
				continue
			}
			cand := newCandidate(s.table.At(sc.row), sc.row, sc.score)
			cand.RelatedKeywords = s.relatedKeywords(sc.row, keywords, weights)
			results = append(results, cand)
		}
	}

	return ResultSet{
		AverageSimilarity: meanSimilarity(results),
		Results:           results,
	}, nil
}

// rarityWeights assigns each keyword a weight in [0.5, 2.0] from its
// document frequency. Keywords matching zero documents get the maximum
// weight; ubiquitous keywords approach the minimum.
func (s *LexicalScorer) rarityWeights(keywords []string) map[string]float64 {
	weights := make(map[string]float64, len(keywords))
	total := float64(len(s.docs))

	for _, kw := range keywords {
		needle := strings.ToLower(strings.TrimSpace(kw))
		if needle == "" {
			continue
		}
		matching := 0
		for _, doc := range s.docs {
			if strings.Contains(doc, needle) {
				matching++
			}
		}
		if matching == 0 {
			weights[kw] = 2.0
			continue
		}
		frequency := float64(matching) / total
		rarity := (1-frequency)*2 + 0.5
		if rarity < 0.5 {
			rarity = 0.5
		}
		if rarity > 2.0 {
			rarity = 2.0
		}
		weights[kw] = rarity
	}

	return weights
}

// weightedQuery repeats each keyword by the integer part of its rarity
// weight. A weight below 1 truncates to zero repetitions, dropping the
// keyword from the query entirely.
func (s *LexicalScorer) weightedQuery(keywords []string, weights map[string]float64) string {
	var parts []string
	for _, kw := range keywords {
		weight, ok := weights[kw]
		if !ok {
			weight = 1.0
		}
		for i := 0; i < int(weight); i++ {
			parts = append(parts, kw)
		}
	}
	return strings.Join(parts, " ")
}

// diversityPenalty penalizes brand repetition and heavy note overlap
// against already accepted results.
func (s *LexicalScorer) diversityPenalty(results []Candidate, cand Candidate) float64 {
	penalty := 0.0

	for _, r := range results {
		if r.Brand == cand.Brand {
			penalty += s.cfg.LexicalBrandPenalty
			break
		}
	}

	candNotes := WordSet(cand.NoteText())
	if len(candNotes) == 0 {
		return penalty
	}
	for _, r := range results {
		existing := WordSet(r.NoteText())
		if CommonWords(existing, candNotes) > s.cfg.LexicalNoteCommonMin {
			penalty += s.cfg.LexicalNotePenalty
		}
	}

	return penalty
}

// relatedKeywords returns up to three user keywords ranked by the
// item's tf-idf weight for that keyword times its rarity weight.
// Keywords outside the vocabulary are skipped.
func (s *LexicalScorer) relatedKeywords(row int, keywords []string, weights map[string]float64) []string {
	type kwScore struct {
		kw    string
		score float64
		order int
	}
	var scored []kwScore
	for i, kw := range keywords {
		if !s.vec.inVocabulary(kw) {
			continue
		}
		weight, ok := weights[kw]
		if !ok {
			weight = 1.0
		}
		scored = append(scored, kwScore{
			kw:    kw,
			score: s.vec.termWeight(row, kw) * weight,
			order: i,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].order < scored[j].order
	})

	out := make([]string, 0, 3)
	for _, ks := range scored {
		if len(out) == 3 {
			break
		}
		out = append(out, ks.kw)
	}
	return out
}

// RelatedKeywords recomputes the related keywords for a catalog key
// from the fitted term model. Used by the orchestrator to re-annotate
// fused results. Returns false when the key cannot be resolved.
func (s *LexicalScorer) RelatedKeywords(key catalog.Key, keywords []string) ([]string, bool) {
	row, ok := s.table.Index(key)
	if !ok {
		return nil, false
	}
	return s.relatedKeywords(row, keywords, s.rarityWeights(keywords)), true
}
