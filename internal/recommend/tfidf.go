// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import (
	"math"
	"sort"
	"strings"
)

// tfidfVectorizer is a unigram+bigram TF-IDF model with a capped
// vocabulary, smoothed inverse document frequency and l2-normalized
// vectors. Fitting happens once per catalog load; transforms are
// read-only and safe for concurrent use.
type tfidfVectorizer struct {
	vocab map[string]int
	terms []string
	idf   []float64

	// docVectors are the l2-normalized sparse vectors of the fitted
	// corpus, indexed by document position.
	docVectors []sparseVec
}

type sparseVec map[int]float64

// ngrams produces the unigram and bigram terms of text.
func ngrams(text string) []string {
	tokens := Tokenize(text)
	terms := make([]string, 0, len(tokens)*2)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// fitTFIDF builds a vectorizer over the documents. The vocabulary keeps
// the maxFeatures terms with the highest total corpus frequency, ties
// broken alphabetically.
func fitTFIDF(docs []string, maxFeatures int) *tfidfVectorizer {
	corpusFreq := make(map[string]int)
	docFreq := make(map[string]int)
	docTerms := make([][]string, len(docs))

	for i, doc := range docs {
		terms := ngrams(doc)
		docTerms[i] = terms
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			corpusFreq[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				docFreq[t]++
			}
		}
	}

	allTerms := make([]string, 0, len(corpusFreq))
	for t := range corpusFreq {
		allTerms = append(allTerms, t)
	}
	sort.Slice(allTerms, func(i, j int) bool {
		if corpusFreq[allTerms[i]] != corpusFreq[allTerms[j]] {
			return corpusFreq[allTerms[i]] > corpusFreq[allTerms[j]]
		}
		return allTerms[i] < allTerms[j]
	})
	if len(allTerms) > maxFeatures {
		allTerms = allTerms[:maxFeatures]
	}
	// Vocabulary index order is alphabetical, independent of frequency.
	sort.Strings(allTerms)

	v := &tfidfVectorizer{
		vocab: make(map[string]int, len(allTerms)),
		terms: allTerms,
		idf:   make([]float64, len(allTerms)),
	}
	for i, t := range allTerms {
		v.vocab[t] = i
	}

	n := float64(len(docs))
	for i, t := range allTerms {
		df := float64(docFreq[t])
		// Smoothed idf: every term behaves as if seen in one extra
		// document, so idf never divides by zero.
		v.idf[i] = math.Log((1+n)/(1+df)) + 1
	}

	v.docVectors = make([]sparseVec, len(docs))
	for i, terms := range docTerms {
		v.docVectors[i] = v.vectorize(terms)
	}

	return v
}

// vectorize builds the l2-normalized tf-idf vector for a term list.
func (v *tfidfVectorizer) vectorize(terms []string) sparseVec {
	counts := make(map[int]float64)
	for _, t := range terms {
		if idx, ok := v.vocab[t]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return counts
	}

	var norm float64
	for idx, tf := range counts {
		w := tf * v.idf[idx]
		counts[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for idx := range counts {
		counts[idx] /= norm
	}
	return counts
}

// transform vectorizes free text with the fitted vocabulary.
func (v *tfidfVectorizer) transform(text string) sparseVec {
	return v.vectorize(ngrams(text))
}

// docVector returns the fitted vector for document i.
func (v *tfidfVectorizer) docVector(i int) sparseVec {
	return v.docVectors[i]
}

// termWeight returns document i's tf-idf weight for a term, 0 when the
// term is out of vocabulary.
func (v *tfidfVectorizer) termWeight(i int, term string) float64 {
	idx, ok := v.vocab[strings.ToLower(strings.TrimSpace(term))]
	if !ok {
		return 0
	}
	return v.docVectors[i][idx]
}

// inVocabulary reports whether term is part of the fitted vocabulary.
func (v *tfidfVectorizer) inVocabulary(term string) bool {
	_, ok := v.vocab[strings.ToLower(strings.TrimSpace(term))]
	return ok
}

// cosine computes the dot product of two l2-normalized sparse vectors,
// which equals their cosine similarity.
func cosine(a, b sparseVec) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for idx, w := range a {
		if bw, ok := b[idx]; ok {
			dot += w * bw
		}
	}
	return dot
}
