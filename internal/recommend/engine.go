// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/perfumeonme/aromatch/internal/logging"
	"github.com/perfumeonme/aromatch/internal/metrics"
)

// EngineOptions hold the operational knobs of the engine.
type EngineOptions struct {
	// CacheEnabled turns on the response TTL cache. It only takes
	// effect when seed randomization is off; a randomized pipeline
	// would serve one frozen draw forever.
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Engine orchestrates the recommendation pipeline: both scorers run on
// the worker pool, their results are fused at an expanded candidate
// count, the diversity selector trims to the requested size, and the
// final set is re-annotated with lexical related keywords.
//
// Every stage degrades gracefully. A failing scorer contributes the
// empty sentinel and fusion falls back to the surviving source; a
// fully empty pipeline yields an empty result set, not an error.
type Engine struct {
	cfg      *Config
	lexical  *LexicalScorer
	semantic Scorer
	fuser    *Fuser
	selector *Selector
	pool     *WorkerPool

	cacheTTL time.Duration
	cacheMu  sync.RWMutex
	cache    map[string]cacheEntry

	logger zerolog.Logger
}

type cacheEntry struct {
	result  ResultSet
	expires time.Time
}

// NewEngine wires the pipeline together.
func NewEngine(cfg *Config, lexical *LexicalScorer, semantic Scorer, pool *WorkerPool, opts EngineOptions) *Engine {
	e := &Engine{
		cfg:      cfg,
		lexical:  lexical,
		semantic: semantic,
		fuser:    NewFuser(cfg),
		selector: NewSelector(cfg, semantic),
		pool:     pool,
		logger:   logging.With().Str("component", "recommend.engine").Logger(),
	}

	if opts.CacheEnabled && !cfg.SeedRandomization {
		ttl := opts.CacheTTL
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		e.cacheTTL = ttl
		e.cache = make(map[string]cacheEntry)
	}

	return e
}

// Recommend runs the full pipeline for a query.
func (e *Engine) Recommend(ctx context.Context, q Query, topN int) ResultSet {
	if topN <= 0 {
		topN = e.cfg.DefaultTopN
	}

	if cached, ok := e.cacheGet(q, topN); ok {
		metrics.ResponseCacheHits.Inc()
		return cached
	}
	if e.cache != nil {
		metrics.ResponseCacheMisses.Inc()
	}

	expand := e.cfg.ExpandedCount(topN)

	// The scorers share no mutable state; overlap them on the pool.
	var lexResult, semResult ResultSet
	lexDone := e.pool.Submit(func() {
		lexResult = e.runScorer(ctx, e.lexical, q, expand)
	})
	semDone := e.pool.Submit(func() {
		semResult = e.runScorer(ctx, e.semantic, q, expand)
	})
	<-lexDone
	<-semDone

	candidates, skipped := e.fuser.Fuse(lexResult, semResult, expand)
	if len(candidates) == 0 {
		metrics.RecommendationRequests.WithLabelValues("empty").Inc()
		e.logger.Info().
			Strs("keywords", q.Keywords()).
			Msg("pipeline produced no candidates")
		empty := EmptyResultSet()
		empty.Skipped = skipped
		return empty
	}

	final, diag := e.selector.Diversify(ctx, q, candidates, topN)
	e.annotateRelatedKeywords(final, q)

	result := ResultSet{
		AverageSimilarity: meanSimilarity(final),
		Results:           final,
		Skipped:           skipped,
		Diversity:         &diag,
	}

	e.cachePut(q, topN, result)
	metrics.RecommendationRequests.WithLabelValues("ok").Inc()

	return result
}

// runScorer isolates one scorer pass: an error degrades that source to
// the empty sentinel instead of failing the request.
func (e *Engine) runScorer(ctx context.Context, s Scorer, q Query, topN int) ResultSet {
	result, err := s.Score(ctx, q, topN)
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("scorer", s.Name()).
			Msg("scorer failed, degrading to empty result")
		return EmptyResultSet()
	}
	return result
}

// annotateRelatedKeywords recomputes each result's related keywords
// from the lexical term model. Items the model cannot locate fall back
// to the first three non-empty raw keywords.
func (e *Engine) annotateRelatedKeywords(results []Candidate, q Query) {
	keywords := q.Keywords()

	fallback := make([]string, 0, 3)
	for _, kw := range keywords {
		if len(fallback) == 3 {
			break
		}
		if strings.TrimSpace(kw) != "" {
			fallback = append(fallback, kw)
		}
	}

	for i := range results {
		related, ok := e.lexical.RelatedKeywords(results[i].Key, keywords)
		if !ok || len(related) == 0 {
			results[i].RelatedKeywords = fallback
			continue
		}
		results[i].RelatedKeywords = related
	}
}

func cacheKey(q Query, topN int) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d",
		q.Ambience, q.Style, q.Gender, q.Season, q.Personality, topN)
}

func (e *Engine) cacheGet(q Query, topN int) (ResultSet, bool) {
	if e.cache == nil {
		return ResultSet{}, false
	}
	key := cacheKey(q, topN)

	e.cacheMu.RLock()
	entry, ok := e.cache[key]
	e.cacheMu.RUnlock()
	if !ok {
		return ResultSet{}, false
	}
	if time.Now().After(entry.expires) {
		e.cacheMu.Lock()
		delete(e.cache, key)
		e.cacheMu.Unlock()
		return ResultSet{}, false
	}
	return entry.result, true
}

func (e *Engine) cachePut(q Query, topN int, result ResultSet) {
	if e.cache == nil {
		return
	}
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	now := time.Now()
	for key, entry := range e.cache {
		if now.After(entry.expires) {
			delete(e.cache, key)
		}
	}
	e.cache[cacheKey(q, topN)] = cacheEntry{
		result:  result,
		expires: now.Add(e.cacheTTL),
	}
}
