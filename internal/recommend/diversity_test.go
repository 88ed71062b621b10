// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/perfumeonme/aromatch/internal/catalog"
)

func diverseCandidates() []Candidate {
	cands := []Candidate{
		cand("Diptyque", "Philosykos", 0.9),
		cand("Le Labo", "Santal 33", 0.85),
		cand("Chanel", "No. 5", 0.8),
		cand("Chanel", "Bleu de Chanel", 0.75),
		cand("Byredo", "Gypsy Water", 0.7),
		cand("Hermès", "Un Jardin Sur Le Toit", 0.65),
	}
	notes := [][3]string{
		{"fig leaf", "coconut green", "cedar woody"},
		{"cardamom violet", "iris sandalwood", "leather musk"},
		{"aldehyde neroli", "rose jasmine", "vanilla vetiver"},
		{"grapefruit lemon", "ginger jasmine", "sandalwood cedar"},
		{"bergamot juniper", "incense pine", "vanilla sandalwood"},
		{"green apple", "rose pear", "grass moss"},
	}
	descs := []string{
		"a fig tree in a calm summer garden",
		"smoky sandalwood with warm leather",
		"an elegant classic floral bouquet",
		"fresh citrus over modern woods",
		"pine needles and vanilla by a campfire",
		"a rooftop garden after the rain",
	}
	for i := range cands {
		cands[i].TopNote = notes[i][0]
		cands[i].MiddleNote = notes[i][1]
		cands[i].BaseNote = notes[i][2]
		cands[i].Description = descs[i]
	}
	return cands
}

func TestDiversifySizeAndUniqueness(t *testing.T) {
	s := NewSelector(testConfig(), nil)

	for _, topN := range []int{1, 2, 3, 5, 10} {
		got, _ := s.Diversify(context.Background(), testQuery(), diverseCandidates(), topN)
		if len(got) > topN {
			t.Errorf("topN=%d returned %d results", topN, len(got))
		}
		seen := make(map[catalog.Key]struct{})
		for _, c := range got {
			if _, dup := seen[c.Key]; dup {
				t.Errorf("duplicate key %v in result", c.Key)
			}
			seen[c.Key] = struct{}{}
		}
	}
}

func TestDiversifyScoreBounds(t *testing.T) {
	cfg := testConfig()
	s := NewSelector(cfg, nil)

	input := diverseCandidates()
	preScores := make(map[catalog.Key]float64, len(input))
	for _, c := range input {
		preScores[c.Key] = c.Similarity
	}

	got, _ := s.Diversify(context.Background(), testQuery(), input, 5)
	for _, c := range got {
		pre := preScores[c.Key]
		if c.Similarity > pre+1e-9 {
			t.Errorf("%v similarity %f exceeds pre-MMR score %f", c.Key, c.Similarity, pre)
		}
		if c.Similarity < cfg.MMRFloorRatio*pre-1e-9 {
			t.Errorf("%v similarity %f below floor %f", c.Key, c.Similarity, cfg.MMRFloorRatio*pre)
		}
	}
}

func TestDiversifySingleBrandCatalog(t *testing.T) {
	s := NewSelector(testConfig(), nil)

	// Three items, one brand, topN 3: the quota overflow backfill must
	// restore everything since total candidates <= requested count.
	input := []Candidate{
		cand("Chanel", "No. 5", 0.9),
		cand("Chanel", "Bleu de Chanel", 0.8),
		cand("Chanel", "Chance", 0.7),
	}
	got, _ := s.Diversify(context.Background(), testQuery(), input, 3)
	if len(got) != 3 {
		t.Errorf("returned %d of 3 same-brand candidates", len(got))
	}
}

func TestDiversifyFewerCandidatesThanRequested(t *testing.T) {
	s := NewSelector(testConfig(), nil)

	input := []Candidate{
		cand("Diptyque", "Philosykos", 0.9),
		cand("Le Labo", "Santal 33", 0.8),
	}
	got, _ := s.Diversify(context.Background(), testQuery(), input, 5)
	if len(got) != 2 {
		t.Errorf("returned %d results from 2 candidates, want 2", len(got))
	}
}

func TestBrandQuotaPool(t *testing.T) {
	cfg := testConfig()
	s := NewSelector(cfg, nil)

	// 8 candidates from one brand drown out the rest without the quota.
	var input []Candidate
	for i := 0; i < 8; i++ {
		input = append(input, cand("Chanel", string(rune('A'+i)), 0.9-float64(i)*0.01))
	}
	input = append(input,
		cand("Diptyque", "Philosykos", 0.5),
		cand("Byredo", "Gypsy Water", 0.45),
	)

	pool := s.brandQuotaPool(input, 2)

	// Pool size is CandidatePoolFactor * topN = 6.
	if len(pool) != 6 {
		t.Fatalf("pool size = %d, want 6", len(pool))
	}
	brands := make(map[string]bool)
	for _, c := range pool {
		brands[c.Brand] = true
	}
	if !brands["Diptyque"] || !brands["Byredo"] {
		t.Errorf("quota did not admit minority brands: %v", brands)
	}
}

func TestCompositeDiversityPermutationInvariant(t *testing.T) {
	s := NewSelector(testConfig(), nil)

	set := diverseCandidates()[:4]
	base := s.compositeDiversity(set)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5; i++ {
		shuffled := make([]Candidate, len(set))
		copy(shuffled, set)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := s.compositeDiversity(shuffled); got != base {
			t.Errorf("composite score changed under permutation: %f != %f", got, base)
		}
	}
}

func TestCompositeDiversityOrdering(t *testing.T) {
	s := NewSelector(testConfig(), nil)

	diverse := diverseCandidates()[:3]

	uniform := []Candidate{
		cand("Chanel", "No. 5", 0.9),
		cand("Chanel", "No. 5 L'Eau", 0.8),
		cand("Chanel", "No. 5 Elixir", 0.7),
	}
	for i := range uniform {
		uniform[i].TopNote = "aldehyde neroli"
		uniform[i].MiddleNote = "rose jasmine"
		uniform[i].BaseNote = "vanilla vetiver"
		uniform[i].Description = "an elegant classic floral bouquet"
	}

	if ds, us := s.compositeDiversity(diverse), s.compositeDiversity(uniform); ds <= us {
		t.Errorf("diverse set scored %f, uniform set %f", ds, us)
	}
}

// stubScorer returns a fixed result set for the alternative pass.
type stubScorer struct {
	result ResultSet
	err    error
	calls  int
}

func (s *stubScorer) Name() string { return "stub" }

func (s *stubScorer) Score(ctx context.Context, q Query, topN int) (ResultSet, error) {
	s.calls++
	if s.err != nil {
		return EmptyResultSet(), s.err
	}
	return s.result, nil
}

func TestAlternativePassImprovesDiversity(t *testing.T) {
	cfg := testConfig()

	// A uniform current set fails validation.
	uniform := []Candidate{
		cand("Chanel", "No. 5", 0.9),
		cand("Chanel", "No. 5 L'Eau", 0.8),
		cand("Chanel", "No. 5 Elixir", 0.7),
	}
	for i := range uniform {
		uniform[i].TopNote = "aldehyde neroli"
		uniform[i].MiddleNote = "rose jasmine"
		uniform[i].BaseNote = "vanilla vetiver"
		uniform[i].Description = "an elegant classic floral bouquet"
	}

	alternatives := &stubScorer{result: resultSet(diverseCandidates()...)}
	s := NewSelector(cfg, alternatives)

	got, diag := s.Diversify(context.Background(), testQuery(), uniform, 3)

	if alternatives.calls == 0 {
		t.Fatal("alternative pass was never invoked")
	}
	if !diag.AlternativeUsed {
		t.Error("diagnostics do not report the alternative pass")
	}
	brands := make(map[string]int)
	for _, c := range got {
		brands[c.Brand]++
	}
	if len(brands) < 2 {
		t.Errorf("alternative set still single-brand: %v", brands)
	}
}

func TestAlternativePassRejectedWhenNotBetter(t *testing.T) {
	cfg := testConfig()

	uniform := []Candidate{
		cand("Chanel", "No. 5", 0.9),
		cand("Chanel", "No. 5 L'Eau", 0.8),
	}
	for i := range uniform {
		uniform[i].TopNote = "aldehyde neroli"
		uniform[i].MiddleNote = "rose jasmine"
		uniform[i].BaseNote = "vanilla vetiver"
		uniform[i].Description = "an elegant classic floral bouquet"
	}

	// The alternative source only offers more of the same brand, so
	// after the used-brand filter nothing new arrives and the
	// alternative cannot be strictly better.
	alternatives := &stubScorer{result: resultSet(
		cand("Chanel", "Chance", 0.6),
	)}
	s := NewSelector(cfg, alternatives)

	_, diag := s.Diversify(context.Background(), testQuery(), uniform, 2)
	if diag.AlternativeUsed {
		t.Error("alternative accepted despite not improving diversity")
	}
}

func TestAlternativePassSurvivesScorerError(t *testing.T) {
	cfg := testConfig()

	uniform := []Candidate{
		cand("Chanel", "No. 5", 0.9),
		cand("Chanel", "No. 5 L'Eau", 0.8),
	}
	for i := range uniform {
		uniform[i].TopNote = "aldehyde neroli"
		uniform[i].MiddleNote = "rose jasmine"
		uniform[i].BaseNote = "vanilla vetiver"
		uniform[i].Description = "an elegant classic floral bouquet"
	}

	alternatives := &stubScorer{err: errors.New("embedding unavailable")}
	s := NewSelector(cfg, alternatives)

	got, diag := s.Diversify(context.Background(), testQuery(), uniform, 2)
	if len(got) != 2 {
		t.Errorf("returned %d results, want the original 2", len(got))
	}
	if diag.AlternativeUsed {
		t.Error("alternative marked used after scorer error")
	}
}

func TestDiversifyDeterministicWithFixedSeed(t *testing.T) {
	cfg := testConfig()
	cfg.SeedRandomization = true // still deterministic: Seed is fixed to 42

	s := NewSelector(cfg, nil)

	first, _ := s.Diversify(context.Background(), testQuery(), diverseCandidates(), 3)
	second, _ := s.Diversify(context.Background(), testQuery(), diverseCandidates(), 3)

	if len(first) != len(second) {
		t.Fatalf("result sizes differ: %d != %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Key != second[i].Key {
			t.Errorf("position %d differs: %v != %v", i, first[i].Key, second[i].Key)
		}
	}
}
