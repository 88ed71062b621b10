// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package persona

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/perfumeonme/aromatch/internal/catalog"
	"github.com/perfumeonme/aromatch/internal/embedding"
	"github.com/perfumeonme/aromatch/internal/logging"
)

// resultCount is the fixed size of a persona recommendation list.
const resultCount = 3

// Match is one recommended perfume for a personality profile.
type Match struct {
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
	ImageURL    string `json:"perfumeImageUrl"`
}

// Result is the full persona analysis response.
type Result struct {
	TypeCode    string   `json:"typeCode"`
	Keywords    []string `json:"keywords"`
	Description string   `json:"description"`
	Perfumes    []Match  `json:"perfumeRecommend"`
}

// Recommender matches a personality description against the catalog by
// embedding similarity. Catalog vectors are computed once at startup
// from a context sentence per perfume; only the per-request user
// description needs a live embedding call.
type Recommender struct {
	table    *catalog.Table
	embedder embedding.Embedder
	vectors  [][]float32
}

// NewRecommender embeds the catalog and returns a ready recommender.
func NewRecommender(ctx context.Context, table *catalog.Table, embedder embedding.Embedder) (*Recommender, error) {
	sentences := make([]string, table.Len())
	for i := 0; i < table.Len(); i++ {
		sentences[i] = perfumeSentence(table.At(i))
	}

	vectors, err := embedder.EmbedBatch(ctx, sentences)
	if err != nil {
		return nil, fmt.Errorf("embed persona catalog: %w", err)
	}

	logging.Info().
		Str("component", "persona").
		Int("perfumes", table.Len()).
		Msg("persona catalog embedded")

	return &Recommender{table: table, embedder: embedder, vectors: vectors}, nil
}

// perfumeSentence renders one perfume as the context sentence its
// vector is computed from.
func perfumeSentence(it catalog.Item) string {
	return fmt.Sprintf("Suitable for %s at %s in %s, with keywords like %s",
		it.Gender, it.Place, it.Season, it.CoreKeywords)
}

// Analyze classifies the answers and returns the full persona result
// with the top perfume matches.
func (r *Recommender) Analyze(ctx context.Context, answers Answers) (Result, error) {
	code := TypeCode(answers)
	description := BuildUserDescription(code)

	matches, err := r.recommend(ctx, description)
	if err != nil {
		return Result{}, err
	}

	return Result{
		TypeCode:    code,
		Keywords:    KeywordPhrases(answers),
		Description: description,
		Perfumes:    matches,
	}, nil
}

func (r *Recommender) recommend(ctx context.Context, description string) ([]Match, error) {
	userVec, err := r.embedder.Embed(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("embed persona description: %w", err)
	}

	type scored struct {
		row int
		sim float64
	}
	ranked := make([]scored, 0, r.table.Len())
	for i, vec := range r.vectors {
		ranked = append(ranked, scored{row: i, sim: cosine(userVec, vec)})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].sim > ranked[b].sim
	})

	n := resultCount
	if n > len(ranked) {
		n = len(ranked)
	}
	matches := make([]Match, 0, n)
	for _, s := range ranked[:n] {
		it := r.table.At(s.row)
		matches = append(matches, Match{
			Name:        it.Name,
			Brand:       it.Brand,
			Description: it.Description,
			ImageURL:    it.ImageURL,
		})
	}
	return matches, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
