// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package api

import (
	"net/http"
	"time"

	"github.com/perfumeonme/aromatch/internal/config"
	"github.com/perfumeonme/aromatch/internal/logging"
	"github.com/perfumeonme/aromatch/internal/models"
	"github.com/perfumeonme/aromatch/internal/persona"
	"github.com/perfumeonme/aromatch/internal/recommend"
	"github.com/perfumeonme/aromatch/internal/validation"
)

// Handlers carries the dependencies of every HTTP handler.
type Handlers struct {
	cfg     *config.Config
	service *recommend.Service
	persona *persona.Recommender
}

// NewHandlers builds the handler set. persona may be nil when the
// persona path is disabled; its endpoint then returns 503.
func NewHandlers(cfg *config.Config, service *recommend.Service, personaRec *persona.Recommender) *Handlers {
	return &Handlers{
		cfg:     cfg,
		service: service,
		persona: personaRec,
	}
}

// Recommendations handles POST /api/v1/recommendations.
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req models.RecommendationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if req.TopN > h.cfg.Recommend.MaxTopN {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "top_n exceeds the configured maximum", nil)
		return
	}

	q := recommend.Query{
		Ambience:    req.Ambience,
		Style:       req.Style,
		Gender:      req.Gender,
		Season:      req.Season,
		Personality: req.Personality,
	}

	full := h.service.RecommendFull(r.Context(), q, req.TopN)

	logging.Info().
		Strs("keywords", q.Keywords()).
		Int("results", len(full.Recommendations.Results)).
		Dur("elapsed", time.Since(started)).
		Msg("recommendation served")

	respondSuccess(w, full, started, false)
}

// PersonaResult handles POST /api/v1/persona/result.
func (h *Handlers) PersonaResult(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if h.persona == nil {
		respondError(w, http.StatusServiceUnavailable, "PERSONA_DISABLED", "persona analysis is not enabled", nil)
		return
	}

	var req models.PersonaRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	result, err := h.persona.Analyze(r.Context(), persona.Answers(req.Answers()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "RECOMMENDATION_ERROR", "persona analysis failed", err)
		return
	}

	respondSuccess(w, result, started, false)
}

// RecommendConfig handles GET /api/v1/recommendations/config. It
// exposes the operational pipeline settings; the OpenAI section is
// excluded from serialization so the key never leaks.
func (h *Handlers) RecommendConfig(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	respondSuccess(w, map[string]interface{}{
		"default_top_n":      h.cfg.Recommend.DefaultTopN,
		"max_top_n":          h.cfg.Recommend.MaxTopN,
		"seed_randomization": h.cfg.Recommend.SeedRandomization,
		"cache_enabled":      h.cfg.Recommend.CacheEnabled,
		"embedding_model":    h.cfg.OpenAI.EmbeddingModel,
	}, started, false)
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	respondSuccess(w, map[string]string{"status": "healthy"}, started, false)
}
