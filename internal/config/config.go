// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

// Package config loads and validates application configuration.
//
// Configuration is merged from three sources in increasing priority:
// struct defaults, a YAML config file, and AROMATCH_* environment
// variables.
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server" json:"server"`
	Logging   LoggingConfig   `koanf:"logging" json:"logging"`
	Catalog   CatalogConfig   `koanf:"catalog" json:"catalog"`
	OpenAI    OpenAIConfig    `koanf:"openai" json:"openai"`
	Embedding EmbeddingConfig `koanf:"embedding" json:"embedding"`
	Recommend RecommendConfig `koanf:"recommend" json:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host" json:"host"`
	Port            int           `koanf:"port" json:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" json:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" json:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins" json:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" json:"level"`
	Format string `koanf:"format" json:"format"`
	Caller bool   `koanf:"caller" json:"caller"`
}

// CatalogConfig describes where the perfume dataset is loaded from.
// Source selects the loader: "file" reads Path, "s3" reads Bucket/Key.
type CatalogConfig struct {
	Source string `koanf:"source" json:"source"`
	Path   string `koanf:"path" json:"path"`
	Bucket string `koanf:"bucket" json:"bucket"`
	Key    string `koanf:"key" json:"key"`
	Region string `koanf:"region" json:"region"`
}

// OpenAIConfig holds settings for the OpenAI-backed embedder and
// text generation clients.
type OpenAIConfig struct {
	APIKey         string        `koanf:"api_key" json:"-"`
	BaseURL        string        `koanf:"base_url" json:"base_url"`
	EmbeddingModel string        `koanf:"embedding_model" json:"embedding_model"`
	ChatModel      string        `koanf:"chat_model" json:"chat_model"`
	Timeout        time.Duration `koanf:"timeout" json:"timeout"`
	RequestsPerSec float64       `koanf:"requests_per_sec" json:"requests_per_sec"`
	Burst          int           `koanf:"burst" json:"burst"`
}

// EmbeddingConfig holds settings for the on-disk embedding vector cache.
type EmbeddingConfig struct {
	CacheEnabled bool   `koanf:"cache_enabled" json:"cache_enabled"`
	CachePath    string `koanf:"cache_path" json:"cache_path"`
}

// RecommendConfig holds engine knobs surfaced through app configuration.
// The full engine configuration (weights, thresholds, family tables) lives
// in the recommend package; these are the operational settings.
type RecommendConfig struct {
	DefaultTopN       int           `koanf:"default_top_n" json:"default_top_n"`
	MaxTopN           int           `koanf:"max_top_n" json:"max_top_n"`
	SeedRandomization bool          `koanf:"seed_randomization" json:"seed_randomization"`
	CacheEnabled      bool          `koanf:"cache_enabled" json:"cache_enabled"`
	CacheTTL          time.Duration `koanf:"cache_ttl" json:"cache_ttl"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8490,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Catalog: CatalogConfig{
			Source: "file",
			Path:   "data/perfumes.csv",
			Bucket: "",
			Key:    "data/perfumes.csv",
			Region: "ap-northeast-1",
		},
		OpenAI: OpenAIConfig{
			APIKey:         "",
			BaseURL:        "",
			EmbeddingModel: "text-embedding-3-small",
			ChatModel:      "gpt-4o",
			Timeout:        30 * time.Second,
			RequestsPerSec: 5,
			Burst:          10,
		},
		Embedding: EmbeddingConfig{
			CacheEnabled: true,
			CachePath:    "data/embedding-cache",
		},
		Recommend: RecommendConfig{
			DefaultTopN:       3,
			MaxTopN:           20,
			SeedRandomization: true,
			CacheEnabled:      false,
			CacheTTL:          5 * time.Minute,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}

	switch c.Catalog.Source {
	case "file":
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required when catalog.source is %q", c.Catalog.Source)
		}
	case "s3":
		if c.Catalog.Bucket == "" || c.Catalog.Key == "" {
			return fmt.Errorf("catalog.bucket and catalog.key are required when catalog.source is %q", c.Catalog.Source)
		}
	default:
		return fmt.Errorf("catalog.source must be \"file\" or \"s3\", got %q", c.Catalog.Source)
	}

	if c.OpenAI.EmbeddingModel == "" {
		return fmt.Errorf("openai.embedding_model must not be empty")
	}
	if c.OpenAI.Timeout <= 0 {
		return fmt.Errorf("openai.timeout must be positive, got %v", c.OpenAI.Timeout)
	}

	if c.Recommend.DefaultTopN < 1 {
		return fmt.Errorf("recommend.default_top_n must be positive, got %d", c.Recommend.DefaultTopN)
	}
	if c.Recommend.MaxTopN < c.Recommend.DefaultTopN {
		return fmt.Errorf("recommend.max_top_n must be >= recommend.default_top_n, got %d < %d",
			c.Recommend.MaxTopN, c.Recommend.DefaultTopN)
	}

	return nil
}
