// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/perfumeonme/aromatch/internal/catalog"
	"github.com/perfumeonme/aromatch/internal/embedding"
	"github.com/perfumeonme/aromatch/internal/logging"
	"github.com/perfumeonme/aromatch/internal/metrics"
)

// Layer blend weights for the multi-layer similarity. The full-text
// layer carries most of the signal; core and context refine it.
const (
	queryCoreShare    = 0.7
	queryContextShare = 0.3

	simFullShare    = 0.7
	simCoreShare    = 0.2
	simContextShare = 0.1
)

// SemanticScorer ranks perfumes by embedding-space similarity. Each
// catalog item is embedded in four layers at initialization (core,
// note, context, full); queries are embedded per request and compared
// against the cached item vectors.
type SemanticScorer struct {
	table    *catalog.Table
	cfg      *Config
	embedder embedding.Embedder

	fullVecs    [][]float32
	coreVecs    [][]float32
	contextVecs [][]float32

	// fullTexts back the related-keyword ranking for each item.
	fullTexts []string

	logger zerolog.Logger
}

// NewSemanticScorer embeds all catalog layers up front. This is the
// slow path of startup; with a warm embedding cache it reduces to
// local reads.
func NewSemanticScorer(ctx context.Context, table *catalog.Table, cfg *Config, embedder embedding.Embedder) (*SemanticScorer, error) {
	n := table.Len()
	coreTexts := make([]string, n)
	noteTexts := make([]string, n)
	contextTexts := make([]string, n)
	fullTexts := make([]string, n)

	for i := 0; i < n; i++ {
		it := table.At(i)
		coreTexts[i] = joinSentences(it.CoreKeywords, it.Description)
		noteTexts[i] = joinSentences(
			it.TopNoteDescription, it.MiddleNoteDescription, it.BaseNoteDescription,
			it.TopNoteKeywords, it.MiddleNoteKeywords, it.BaseNoteKeywords,
		)
		contextTexts[i] = joinSentences(it.Gender, it.Season, it.Place, it.Brand)
		fullTexts[i] = joinSentences(coreTexts[i], noteTexts[i], contextTexts[i])
	}

	s := &SemanticScorer{
		table:     table,
		cfg:       cfg,
		embedder:  embedder,
		fullTexts: fullTexts,
		logger:    logging.With().Str("component", "recommend.semantic").Logger(),
	}

	var err error
	if s.fullVecs, err = embedder.EmbedBatch(ctx, fullTexts); err != nil {
		return nil, fmt.Errorf("embed full layer: %w", err)
	}
	if s.coreVecs, err = embedder.EmbedBatch(ctx, coreTexts); err != nil {
		return nil, fmt.Errorf("embed core layer: %w", err)
	}
	if s.contextVecs, err = embedder.EmbedBatch(ctx, contextTexts); err != nil {
		return nil, fmt.Errorf("embed context layer: %w", err)
	}
	// The note layer is folded into the full text; embedding it
	// separately adds cost without a separate similarity term.

	s.logger.Info().
		Int("items", n).
		Str("model", embedder.Model()).
		Msg("semantic scorer initialized")

	return s, nil
}

func joinSentences(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ". ")
}

// Name implements Scorer.
func (s *SemanticScorer) Name() string { return "semantic" }

// Score implements Scorer.
func (s *SemanticScorer) Score(ctx context.Context, q Query, topN int) (ResultSet, error) {
	start := time.Now()
	defer func() {
		metrics.RecordScorerPass("semantic", time.Since(start))
	}()

	coreSentence := fmt.Sprintf("This perfume evokes a %s, %s mood for a %s person.",
		q.Ambience, q.Style, q.Personality)
	contextSentence := fmt.Sprintf("This perfume suits %s in %s.", q.Gender, q.Season)
	coreQuery := strings.TrimSpace(strings.Join([]string{q.Ambience, q.Style, q.Personality}, " "))
	contextQuery := strings.TrimSpace(strings.Join([]string{q.Gender, q.Season}, " "))

	queryVecs, err := s.embedder.EmbedBatch(ctx, []string{
		coreSentence, contextSentence, coreQuery, contextQuery,
	})
	if err != nil {
		return EmptyResultSet(), fmt.Errorf("embed query: %w", err)
	}

	// Weighted full-text query: 70% core sentence, 30% context sentence.
	weighted := blendVectors(queryVecs[0], queryVecs[1], queryCoreShare, queryContextShare)

	n := s.table.Len()
	sims := make([]float64, n)
	for i := 0; i < n; i++ {
		sims[i] = simFullShare*cosine32(weighted, s.fullVecs[i]) +
			simCoreShare*cosine32(queryVecs[2], s.coreVecs[i]) +
			simContextShare*cosine32(queryVecs[3], s.contextVecs[i])
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return sims[order[i]] > sims[order[j]]
	})
	if topN < len(order) {
		order = order[:topN]
	}

	keywordVecs := s.embedKeywords(ctx, q.Keywords())

	results := make([]Candidate, 0, len(order))
	for _, row := range order {
		cand := newCandidate(s.table.At(row), row, sims[row])
		cand.RelatedKeywords = s.relatedKeywords(keywordVecs, s.fullVecs[row])
		results = append(results, cand)
	}

	return ResultSet{
		AverageSimilarity: meanSimilarity(results),
		Results:           results,
	}, nil
}

type keywordVec struct {
	keyword string
	vec     []float32
	order   int
}

// embedKeywords embeds each input keyword individually for the
// related-keyword ranking. Keywords that are empty or fail to embed
// are skipped, never fatal.
func (s *SemanticScorer) embedKeywords(ctx context.Context, keywords []string) []keywordVec {
	var texts []string
	var order []int
	for i, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			continue
		}
		texts = append(texts, kw)
		order = append(order, i)
	}
	if len(texts) == 0 {
		return nil
	}

	vecs, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		s.logger.Warn().Err(err).Msg("keyword embedding failed, skipping related keywords")
		return nil
	}

	out := make([]keywordVec, len(texts))
	for i := range texts {
		out[i] = keywordVec{keyword: texts[i], vec: vecs[i], order: order[i]}
	}
	return out
}

// relatedKeywords ranks the user's keywords by similarity to the
// item's full-text vector. Ties break by keyword input order.
func (s *SemanticScorer) relatedKeywords(keywords []keywordVec, itemVec []float32) []string {
	type kwScore struct {
		keywordVec
		score float64
	}
	scored := make([]kwScore, len(keywords))
	for i, kv := range keywords {
		scored[i] = kwScore{keywordVec: kv, score: cosine32(kv.vec, itemVec)}
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
		out = append(out, ks.keyword)
	}
	return out
}

// blendVectors combines two equal-length vectors with the given weights.
func blendVectors(a, b []float32, wa, wb float64) []float32 {
	out := make([]float32, len(a))
	for i := range a {
		var bv float32
		if i < len(b) {
			bv = b[i]
		}
		out[i] = float32(wa*float64(a[i]) + wb*float64(bv))
	}
	return out
}

// cosine32 computes cosine similarity between two float32 vectors.
func cosine32(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		na += av * av
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
