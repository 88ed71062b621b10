// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

// Package scenario writes the short mood scenario that accompanies a
// recommendation. The production implementation prompts an OpenAI chat
// model; any failure yields a fixed fallback sentence rather than an
// error, because a missing scenario must never block the perfumes.
package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"

	"github.com/perfumeonme/aromatch/internal/logging"
	"github.com/perfumeonme/aromatch/internal/metrics"
)

// FallbackText is returned whenever generation fails.
const FallbackText = "We couldn't create your scent scenario this time. Please try again."

const systemPrompt = "You are an emotional scenario writer for a perfume " +
	"recommendation service. Given a handful of mood keywords, write one " +
	"short, vivid scene in second person that captures the feeling of " +
	"wearing a matching scent. Keep it to three or four sentences and do " +
	"not name any perfume or brand."

const (
	temperature = 0.85
	maxTokens   = 400
)

// chatClient is the subset of the OpenAI API the generator needs.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config configures the generator.
type Config struct {
	Model   string
	Timeout time.Duration
}

// Generator produces scenario text via an OpenAI chat model. A circuit
// breaker shields the service when the upstream degrades; while the
// breaker is open every call returns the fallback immediately.
type Generator struct {
	client  chatClient
	model   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[openai.ChatCompletionResponse]
}

// NewGenerator builds a Generator on top of an OpenAI client.
func NewGenerator(client *openai.Client, cfg Config) *Generator {
	return newGenerator(client, cfg)
}

func newGenerator(client chatClient, cfg Config) *Generator {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[openai.ChatCompletionResponse](gobreaker.Settings{
		Name:        "openai-scenario",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("component", "scenario").
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return &Generator{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		breaker: breaker,
	}
}

// Generate returns a scenario for the keywords. It never errors; any
// failure, including an empty completion, yields FallbackText. There is
// no retry: the caller is a live request and a second model round trip
// is worse than the fallback sentence.
func (g *Generator) Generate(ctx context.Context, keywords []string) string {
	clean := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if s := strings.TrimSpace(kw); s != "" {
			clean = append(clean, s)
		}
	}
	if len(clean) == 0 {
		metrics.ScenarioGenerations.WithLabelValues("fallback").Inc()
		return FallbackText
	}

	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf(
		"Write a scene where you feel %s. Address the reader as \"you\".",
		strings.Join(clean, ", "))

	start := time.Now()
	resp, err := g.breaker.Execute(func() (openai.ChatCompletionResponse, error) {
		return g.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
			Model:       g.model,
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
		})
	})
	metrics.ScenarioGenerationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		logging.Warn().
			Str("component", "scenario").
			Err(err).
			Strs("keywords", clean).
			Msg("scenario generation failed, serving fallback")
		metrics.ScenarioGenerations.WithLabelValues("fallback").Inc()
		return FallbackText
	}

	text := ""
	if len(resp.Choices) > 0 {
		text = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	if text == "" {
		logging.Warn().
			Str("component", "scenario").
			Strs("keywords", clean).
			Msg("scenario completion empty, serving fallback")
		metrics.ScenarioGenerations.WithLabelValues("fallback").Inc()
		return FallbackText
	}

	metrics.ScenarioGenerations.WithLabelValues("ok").Inc()
	return text
}
