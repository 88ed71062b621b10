// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// StaticEmbedder produces deterministic pseudo-embeddings derived from
// a hash of the input text. It needs no network access and is used in
// tests and for local development without API credentials.
//
// Identical texts always map to identical unit vectors, so cosine
// similarity behaves sensibly: equal texts score 1.0 and unrelated
// texts score near 0.
type StaticEmbedder struct {
	dim int
}

// NewStaticEmbedder creates a StaticEmbedder producing vectors of the
// given dimension. Dimensions below 8 are raised to 8.
func NewStaticEmbedder(dim int) *StaticEmbedder {
	if dim < 8 {
		dim = 8
	}
	return &StaticEmbedder{dim: dim}
}

// Model identifies the static embedder in cache keys.
func (s *StaticEmbedder) Model() string {
	return "static"
}

// Embed returns the deterministic vector for text.
func (s *StaticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vector(text), nil
}

// EmbedBatch returns one deterministic vector per text.
func (s *StaticEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = s.vector(t)
	}
	return vecs, nil
}

func (s *StaticEmbedder) vector(text string) []float32 {
	vec := make([]float32, s.dim)
	seed := sha256.Sum256([]byte(text))

	var norm float64
	buf := seed[:]
	for i := range vec {
		if len(buf) < 4 {
			next := sha256.Sum256(buf)
			buf = next[:]
		}
		bits := binary.LittleEndian.Uint32(buf[:4])
		buf = buf[4:]
		// Map to [-1, 1)
		v := float64(bits)/float64(math.MaxUint32)*2 - 1
		vec[i] = float32(v)
		norm += v * v
	}

	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}
