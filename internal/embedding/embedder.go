// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

// Package embedding turns text into dense vectors for the semantic
// scorer. The production implementation calls the OpenAI embeddings
// API; tests use in-memory fakes.
package embedding

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/perfumeonme/aromatch/internal/logging"
	"github.com/perfumeonme/aromatch/internal/metrics"
)

// Embedder converts text into embedding vectors.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Model identifies the embedding model. Cache keys include it so
	// vectors from different models never mix.
	Model() string
}

// embeddingClient is the subset of the OpenAI API the embedder needs.
type embeddingClient interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIConfig configures the OpenAI embedder.
type OpenAIConfig struct {
	Model          string
	RequestsPerSec float64
	Burst          int
	Timeout        time.Duration
}

// OpenAIEmbedder calls the OpenAI embeddings API. Outbound calls pass
// through a rate limiter and a circuit breaker so a degraded upstream
// cannot stall the whole service.
type OpenAIEmbedder struct {
	client  embeddingClient
	model   string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[openai.EmbeddingResponse]
	timeout time.Duration
}

// NewOpenAIEmbedder builds an embedder on top of an OpenAI client.
func NewOpenAIEmbedder(client *openai.Client, cfg OpenAIConfig) *OpenAIEmbedder {
	return newOpenAIEmbedder(client, cfg)
}

func newOpenAIEmbedder(client embeddingClient, cfg OpenAIConfig) *OpenAIEmbedder {
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[openai.EmbeddingResponse](gobreaker.Settings{
		Name:        "openai-embeddings",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("component", "embedding").
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return &OpenAIEmbedder{
		client:  client,
		model:   cfg.Model,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		breaker: breaker,
		timeout: cfg.Timeout,
	}
}

// Model returns the embedding model name.
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// Embed returns the embedding vector for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts in a single API request.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit wait: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.breaker.Execute(func() (openai.EmbeddingResponse, error) {
		return e.client.CreateEmbeddings(reqCtx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(e.model),
			Input: texts,
		})
	})
	metrics.EmbeddingRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EmbeddingRequestErrors.Inc()
		return nil, fmt.Errorf("create embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embedding response index %d out of range", d.Index)
		}
		vecs[d.Index] = d.Embedding
	}
	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("embedding response missing vector for input %d", i)
		}
	}

	return vecs, nil
}
