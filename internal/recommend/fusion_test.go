// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import (
	"math"
	"testing"

	"github.com/perfumeonme/aromatch/internal/catalog"
)

func cand(brand, name string, sim float64) Candidate {
	return Candidate{
		Key:        catalog.Key{Brand: brand, Name: name},
		Brand:      brand,
		Name:       name,
		Similarity: sim,
		Row:        -1,
	}
}

func resultSet(cands ...Candidate) ResultSet {
	return ResultSet{
		AverageSimilarity: meanSimilarity(cands),
		Results:           cands,
	}
}

func TestBlendWeight(t *testing.T) {
	f := NewFuser(testConfig())

	tests := []struct {
		name       string
		lexicalAvg float64
		want       float64
	}{
		{"strong lexical signal", 0.25, 0.5},
		{"moderate lexical signal", 0.15, 0.3},
		{"weak lexical signal", 0.05, 0.2},
		{"at threshold leans semantic", 0.1, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.BlendWeight(tt.lexicalAvg); got != tt.want {
				t.Errorf("BlendWeight(%f) = %f, want %f", tt.lexicalAvg, got, tt.want)
			}
		})
	}
}

func TestFuseBlendedScores(t *testing.T) {
	f := NewFuser(testConfig())

	lex := resultSet(
		cand("Diptyque", "Philosykos", 0.8),
		cand("Le Labo", "Santal 33", 0.6),
	)
	sem := resultSet(
		cand("Diptyque", "Philosykos", 0.4),
		cand("Byredo", "Gypsy Water", 0.9),
	)

	fused, skipped := f.Fuse(lex, sem, 10)
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %v", skipped)
	}

	// Lexical average 0.7 > 2*0.1, so alpha = 0.5.
	alpha := 0.5
	want := map[catalog.Key]float64{
		{Brand: "Diptyque", Name: "Philosykos"}:  alpha*0.8 + (1-alpha)*0.4,
		{Brand: "Le Labo", Name: "Santal 33"}:    alpha*0.6 + (1-alpha)*0, // missing side contributes 0
		{Brand: "Byredo", Name: "Gypsy Water"}:   alpha*0 + (1-alpha)*0.9,
	}

	if len(fused) != len(want) {
		t.Fatalf("fused %d candidates, want %d", len(fused), len(want))
	}
	for _, c := range fused {
		expected, ok := want[c.Key]
		if !ok {
			t.Errorf("unexpected fused key %v", c.Key)
			continue
		}
		if math.Abs(c.Similarity-expected) > 1e-9 {
			t.Errorf("%v blended score = %f, want %f", c.Key, c.Similarity, expected)
		}
	}

	for i := 1; i < len(fused); i++ {
		if fused[i].Similarity > fused[i-1].Similarity {
			t.Error("fused results not sorted by blended score")
		}
	}
}

func TestFuseNoLexicalSignalFallsBackToSemantic(t *testing.T) {
	f := NewFuser(testConfig())

	sem := resultSet(
		cand("Byredo", "Gypsy Water", 0.9),
		cand("Chanel", "No. 5", 0.7),
		cand("Hermès", "Un Jardin Sur Le Toit", 0.5),
	)

	fused, _ := f.Fuse(EmptyResultSet(), sem, 2)
	if len(fused) != 2 {
		t.Fatalf("fused %d candidates, want semantic truncated to 2", len(fused))
	}
	if fused[0].Similarity != 0.9 || fused[1].Similarity != 0.7 {
		t.Errorf("semantic scores were modified: %f, %f", fused[0].Similarity, fused[1].Similarity)
	}
}

func TestFuseNoSemanticFallsBackToLexical(t *testing.T) {
	f := NewFuser(testConfig())

	lex := resultSet(cand("Diptyque", "Philosykos", 0.8))

	fused, _ := f.Fuse(lex, EmptyResultSet(), 5)
	if len(fused) != 1 || fused[0].Similarity != 0.8 {
		t.Errorf("expected lexical pass-through, got %v", fused)
	}
}

func TestFuseSkipsMalformedKeys(t *testing.T) {
	f := NewFuser(testConfig())

	lex := resultSet(
		cand("Diptyque", "Philosykos", 0.8),
		cand("", "Nameless Brand", 0.9),
	)
	sem := resultSet(
		cand("Byredo", "", 0.7),
		cand("Byredo", "Gypsy Water", 0.6),
	)

	fused, skipped := f.Fuse(lex, sem, 10)

	if len(fused) != 2 {
		t.Errorf("fused %d candidates, want 2 valid ones", len(fused))
	}
	if len(skipped) != 2 {
		t.Errorf("collected %d skip diagnostics, want 2", len(skipped))
	}
	for _, s := range skipped {
		if s.Stage != "fusion" {
			t.Errorf("skip stage = %q, want fusion", s.Stage)
		}
	}
}

func TestFuseBothEmpty(t *testing.T) {
	f := NewFuser(testConfig())

	fused, _ := f.Fuse(EmptyResultSet(), EmptyResultSet(), 3)
	if len(fused) != 0 {
		t.Errorf("fused %d candidates from two empty sources", len(fused))
	}
}
