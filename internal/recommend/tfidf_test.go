// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import (
	"math"
	"testing"
)

func TestNgrams(t *testing.T) {
	got := ngrams("fresh woody amber")
	want := []string{"fresh", "woody", "amber", "fresh woody", "woody amber"}
	if len(got) != len(want) {
		t.Fatalf("ngrams = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ngrams[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFitTFIDFVocabularyCap(t *testing.T) {
	docs := []string{
		"fig woody green",
		"sandalwood woody leather",
		"floral rose jasmine",
	}
	v := fitTFIDF(docs, 4)

	if len(v.vocab) != 4 {
		t.Fatalf("vocabulary size = %d, want 4", len(v.vocab))
	}
	// "woody" appears in two documents and must survive the cap.
	if !v.inVocabulary("woody") {
		t.Error("most frequent term missing from capped vocabulary")
	}
}

func TestTFIDFDocVectorsNormalized(t *testing.T) {
	docs := []string{"fig woody green", "sandalwood leather smoky"}
	v := fitTFIDF(docs, 100)

	for i := range docs {
		var norm float64
		for _, w := range v.docVector(i) {
			norm += w * w
		}
		if math.Abs(norm-1) > 1e-9 {
			t.Errorf("doc %d norm^2 = %f, want 1", i, norm)
		}
	}
}

func TestTFIDFCosine(t *testing.T) {
	docs := []string{"fig woody green", "sandalwood leather smoky", "fig woody green"}
	v := fitTFIDF(docs, 100)

	if got := cosine(v.docVector(0), v.docVector(2)); math.Abs(got-1) > 1e-9 {
		t.Errorf("cosine of identical docs = %f, want 1", got)
	}
	if got := cosine(v.docVector(0), v.docVector(1)); got != 0 {
		t.Errorf("cosine of disjoint docs = %f, want 0", got)
	}
}

func TestTFIDFTransformOutOfVocabulary(t *testing.T) {
	v := fitTFIDF([]string{"fig woody green"}, 100)

	q := v.transform("zebra spaceship")
	if len(q) != 0 {
		t.Errorf("transform of out-of-vocabulary text has %d entries, want 0", len(q))
	}
}

func TestTFIDFRareTermWeighsMore(t *testing.T) {
	docs := []string{
		"woody fig",
		"woody rose",
		"woody musk",
		"woody amber",
	}
	v := fitTFIDF(docs, 100)

	// In doc 0, "fig" (1 document) must outweigh "woody" (all documents).
	if fig, woody := v.termWeight(0, "fig"), v.termWeight(0, "woody"); fig <= woody {
		t.Errorf("rare term weight %f <= common term weight %f", fig, woody)
	}
}
