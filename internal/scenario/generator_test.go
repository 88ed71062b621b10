// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package scenario

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type fakeChatClient struct {
	resp  openai.ChatCompletionResponse
	err   error
	calls int
	last  openai.ChatCompletionRequest
}

func (f *fakeChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.last = req
	return f.resp, f.err
}

func completion(text string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: text}},
		},
	}
}

func TestGenerate(t *testing.T) {
	client := &fakeChatClient{resp: completion("You step into a quiet cedar grove.")}
	g := newGenerator(client, Config{})

	got := g.Generate(context.Background(), []string{"calm", "woody"})

	if got != "You step into a quiet cedar grove." {
		t.Errorf("Generate() = %q", got)
	}
	if client.calls != 1 {
		t.Errorf("client called %d times, want 1", client.calls)
	}
	if client.last.Temperature != temperature {
		t.Errorf("temperature = %f, want %f", client.last.Temperature, float32(temperature))
	}
	if client.last.MaxTokens != maxTokens {
		t.Errorf("max tokens = %d, want %d", client.last.MaxTokens, maxTokens)
	}
	if len(client.last.Messages) != 2 {
		t.Fatalf("request has %d messages, want 2", len(client.last.Messages))
	}
	if !strings.Contains(client.last.Messages[1].Content, "calm, woody") {
		t.Errorf("user prompt missing keywords: %q", client.last.Messages[1].Content)
	}
}

func TestGenerateFallbackOnError(t *testing.T) {
	client := &fakeChatClient{err: errors.New("rate limited")}
	g := newGenerator(client, Config{})

	got := g.Generate(context.Background(), []string{"calm"})

	if got != FallbackText {
		t.Errorf("Generate() = %q, want fallback", got)
	}
	// No retry on failure.
	if client.calls != 1 {
		t.Errorf("client called %d times, want 1", client.calls)
	}
}

func TestGenerateFallbackOnEmptyCompletion(t *testing.T) {
	tests := []struct {
		name string
		resp openai.ChatCompletionResponse
	}{
		{"no choices", openai.ChatCompletionResponse{}},
		{"blank content", completion("   ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGenerator(&fakeChatClient{resp: tt.resp}, Config{})
			if got := g.Generate(context.Background(), []string{"calm"}); got != FallbackText {
				t.Errorf("Generate() = %q, want fallback", got)
			}
		})
	}
}

func TestGenerateFallbackWithoutKeywords(t *testing.T) {
	client := &fakeChatClient{resp: completion("unused")}
	g := newGenerator(client, Config{})

	got := g.Generate(context.Background(), []string{"", "  "})

	if got != FallbackText {
		t.Errorf("Generate() = %q, want fallback", got)
	}
	if client.calls != 0 {
		t.Errorf("client called %d times for an empty keyword set", client.calls)
	}
}

func TestGenerateBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	client := &fakeChatClient{err: errors.New("upstream down")}
	g := newGenerator(client, Config{})

	for i := 0; i < 6; i++ {
		g.Generate(context.Background(), []string{"calm"})
	}

	// After five consecutive failures the breaker rejects the sixth
	// call without reaching the client.
	if client.calls >= 6 {
		t.Errorf("client called %d times, breaker never opened", client.calls)
	}
}
