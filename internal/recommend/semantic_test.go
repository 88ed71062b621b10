// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import (
	"context"
	"testing"

	"github.com/perfumeonme/aromatch/internal/embedding"
)

func newTestSemantic(t *testing.T) *SemanticScorer {
	t.Helper()
	s, err := NewSemanticScorer(context.Background(), testTable(t), testConfig(), embedding.NewStaticEmbedder(64))
	if err != nil {
		t.Fatalf("NewSemanticScorer() error = %v", err)
	}
	return s
}

func TestSemanticScoreReturnsAtMostTopN(t *testing.T) {
	s := newTestSemantic(t)

	for _, topN := range []int{1, 3, 10} {
		rs, err := s.Score(context.Background(), testQuery(), topN)
		if err != nil {
			t.Fatalf("Score() error = %v", err)
		}
		if len(rs.Results) > topN {
			t.Errorf("topN=%d returned %d results", topN, len(rs.Results))
		}
	}
}

func TestSemanticScoreOrdering(t *testing.T) {
	s := newTestSemantic(t)

	rs, err := s.Score(context.Background(), testQuery(), 6)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	for i := 1; i < len(rs.Results); i++ {
		if rs.Results[i].Similarity > rs.Results[i-1].Similarity {
			t.Error("results not sorted by similarity")
		}
	}
	if rs.AverageSimilarity != meanSimilarity(rs.Results) {
		t.Errorf("average similarity %f does not match results", rs.AverageSimilarity)
	}
}

func TestSemanticRelatedKeywordsSkipEmpty(t *testing.T) {
	s := newTestSemantic(t)

	q := Query{Ambience: "calm", Style: "", Gender: "unisex", Season: "", Personality: "quiet"}
	rs, err := s.Score(context.Background(), q, 2)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	for _, r := range rs.Results {
		if len(r.RelatedKeywords) > 3 {
			t.Errorf("%s has %d related keywords", r.Name, len(r.RelatedKeywords))
		}
		for _, kw := range r.RelatedKeywords {
			if kw == "" {
				t.Errorf("%s carries an empty related keyword", r.Name)
			}
		}
	}
}

func TestSemanticDeterministic(t *testing.T) {
	s := newTestSemantic(t)

	first, err := s.Score(context.Background(), testQuery(), 3)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	second, err := s.Score(context.Background(), testQuery(), 3)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	if len(first.Results) != len(second.Results) {
		t.Fatal("repeated scoring produced different result counts")
	}
	for i := range first.Results {
		if first.Results[i].Key != second.Results[i].Key {
			t.Errorf("position %d differs between runs", i)
		}
	}
}

func TestBlendVectors(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}

	got := blendVectors(a, b, 0.7, 0.3)
	if got[0] != 0.7 || got[1] != 0.3 {
		t.Errorf("blendVectors = %v, want [0.7 0.3]", got)
	}
}

func TestCosine32(t *testing.T) {
	a := []float32{1, 0, 0}

	if got := cosine32(a, a); got < 0.999 || got > 1.001 {
		t.Errorf("cosine32(a, a) = %f, want 1", got)
	}
	if got := cosine32(a, []float32{0, 1, 0}); got != 0 {
		t.Errorf("cosine32 of orthogonal vectors = %f, want 0", got)
	}
	if got := cosine32(a, []float32{0, 0, 0}); got != 0 {
		t.Errorf("cosine32 with zero vector = %f, want 0", got)
	}
}
