// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import (
	"context"
)

// ScenarioGenerator produces the free-text mood scenario for a keyword
// set. Implementations return a fixed placeholder sentence on failure
// instead of an error; scenario trouble must never abort a
// recommendation.
type ScenarioGenerator interface {
	Generate(ctx context.Context, keywords []string) string
}

// FullResult pairs the scenario text with the recommendation results.
type FullResult struct {
	Scenario        string    `json:"scenario"`
	Recommendations ResultSet `json:"recommendations"`
}

// Service combines the recommendation engine with scenario generation.
// The two have no data dependency, so the scenario call runs on the
// worker pool concurrently with the pipeline and the end-to-end
// latency is bounded by the slower of the two.
type Service struct {
	engine    *Engine
	scenarios ScenarioGenerator
	pool      *WorkerPool
}

// NewService creates a Service. scenarios may be nil, in which case
// results carry an empty scenario.
func NewService(engine *Engine, scenarios ScenarioGenerator, pool *WorkerPool) *Service {
	return &Service{engine: engine, scenarios: scenarios, pool: pool}
}

// Recommend runs the recommendation pipeline alone.
func (s *Service) Recommend(ctx context.Context, q Query, topN int) ResultSet {
	return s.engine.Recommend(ctx, q, topN)
}

// RecommendFull runs scenario generation and the recommendation
// pipeline concurrently and joins the results.
func (s *Service) RecommendFull(ctx context.Context, q Query, topN int) FullResult {
	var scenario string
	var scenarioDone <-chan struct{}

	if s.scenarios != nil {
		scenarioDone = s.pool.Submit(func() {
			scenario = s.scenarios.Generate(ctx, q.Keywords())
		})
	}

	// The engine dispatches its scorers to the same pool; running it
	// on the caller goroutine keeps pooled tasks leaf-only.
	recommendations := s.engine.Recommend(ctx, q, topN)

	if scenarioDone != nil {
		<-scenarioDone
	}

	return FullResult{
		Scenario:        scenario,
		Recommendations: recommendations,
	}
}
