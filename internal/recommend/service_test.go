// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import (
	"context"
	"strings"
	"testing"
)

type fakeScenarioGenerator struct {
	calls    int
	keywords []string
}

func (f *fakeScenarioGenerator) Generate(ctx context.Context, keywords []string) string {
	f.calls++
	f.keywords = keywords
	return "You wander through " + strings.Join(keywords, ", ") + "."
}

func TestServiceRecommendFull(t *testing.T) {
	engine, pool := newTestEngine(t, EngineOptions{})
	gen := &fakeScenarioGenerator{}
	svc := NewService(engine, gen, pool)

	full := svc.RecommendFull(context.Background(), testQuery(), 3)

	if gen.calls != 1 {
		t.Errorf("scenario generator called %d times, want 1", gen.calls)
	}
	if full.Scenario == "" {
		t.Error("full result carries no scenario")
	}
	if len(gen.keywords) != 5 {
		t.Errorf("generator received %d keywords, want 5", len(gen.keywords))
	}
	if len(full.Recommendations.Results) == 0 {
		t.Error("full result carries no recommendations")
	}
}

func TestServiceRecommendFullNilGenerator(t *testing.T) {
	engine, pool := newTestEngine(t, EngineOptions{})
	svc := NewService(engine, nil, pool)

	full := svc.RecommendFull(context.Background(), testQuery(), 3)

	if full.Scenario != "" {
		t.Errorf("scenario = %q, want empty without a generator", full.Scenario)
	}
	if len(full.Recommendations.Results) == 0 {
		t.Error("full result carries no recommendations")
	}
}

func TestServiceRecommendSkipsScenario(t *testing.T) {
	engine, pool := newTestEngine(t, EngineOptions{})
	gen := &fakeScenarioGenerator{}
	svc := NewService(engine, gen, pool)

	rs := svc.Recommend(context.Background(), testQuery(), 3)

	if gen.calls != 0 {
		t.Errorf("scenario generator called %d times on the plain path", gen.calls)
	}
	if len(rs.Results) == 0 {
		t.Error("plain path returned no recommendations")
	}
}
