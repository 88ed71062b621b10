// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/perfumeonme/aromatch/internal/logging"
	"github.com/perfumeonme/aromatch/internal/metrics"
)

// CachedEmbedder wraps an Embedder with a persistent badger-backed
// vector cache. Catalog texts are stable between releases, so cached
// vectors survive restarts and make cold starts cheap.
//
// Cache keys include the model name; switching embedding models never
// serves stale vectors.
type CachedEmbedder struct {
	inner Embedder
	db    *badger.DB
}

// NewCachedEmbedder opens (or creates) the cache at path and wraps inner.
func NewCachedEmbedder(inner Embedder, path string) (*CachedEmbedder, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open embedding cache at %s: %w", path, err)
	}

	return &CachedEmbedder{inner: inner, db: db}, nil
}

// Close releases the underlying badger database.
func (c *CachedEmbedder) Close() error {
	return c.db.Close()
}

// Model returns the wrapped embedder's model name.
func (c *CachedEmbedder) Model() string {
	return c.inner.Model()
}

// Embed returns the cached vector for text, calling the inner embedder
// on a miss.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch resolves each text from the cache, then embeds the misses
// in one inner call and stores the results.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vecs := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		vec, ok := c.get(text)
		if ok {
			vecs[i] = vec
			metrics.EmbeddingCacheHits.Inc()
			continue
		}
		metrics.EmbeddingCacheMisses.Inc()
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return vecs, nil
	}

	fresh, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for j, i := range missIdx {
		vecs[i] = fresh[j]
		c.put(texts[i], fresh[j])
	}

	return vecs, nil
}

func (c *CachedEmbedder) cacheKey(text string) []byte {
	sum := sha256.Sum256([]byte(text))
	return []byte(c.inner.Model() + ":" + hex.EncodeToString(sum[:]))
}

func (c *CachedEmbedder) get(text string) ([]float32, bool) {
	var vec []float32
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.cacheKey(text))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &vec)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logging.Warn().
				Str("component", "embedding").
				Err(err).
				Msg("embedding cache read failed")
		}
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) put(text string, vec []float32) {
	encoded, err := json.Marshal(vec)
	if err != nil {
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(c.cacheKey(text), encoded)
	})
	if err != nil {
		// A write failure only costs a re-embed on the next start.
		logging.Warn().
			Str("component", "embedding").
			Err(err).
			Msg("embedding cache write failed")
	}
}
