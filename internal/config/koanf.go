// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/aromatch/config.yaml",
	"/etc/aromatch/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "AROMATCH_CONFIG_PATH"

// envPrefix is stripped from environment variables before mapping them
// onto config paths.
const envPrefix = "AROMATCH_"

// Load builds the configuration from layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML config file (if one exists)
//  3. Environment variables: AROMATCH_* overrides any setting
//
// Precedence is ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Comma-separated env values become slices for known slice fields
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the first file found, or empty string if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as
// comma-separated slices when set via environment variables.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings but the config expects
// slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps AROMATCH_* environment variable names onto koanf
// config paths.
//
// Examples:
//   - AROMATCH_SERVER_PORT -> server.port
//   - AROMATCH_OPENAI_API_KEY -> openai.api_key
//   - AROMATCH_CATALOG_SOURCE -> catalog.source
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	envMappings := map[string]string{
		// Server mappings
		"server_host":              "server.host",
		"server_port":              "server.port",
		"server_read_timeout":      "server.read_timeout",
		"server_write_timeout":     "server.write_timeout",
		"server_shutdown_timeout":  "server.shutdown_timeout",
		"server_rate_limit_reqs":   "server.rate_limit_reqs",
		"server_rate_limit_window": "server.rate_limit_window",
		"server_cors_origins":      "server.cors_origins",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Catalog mappings
		"catalog_source": "catalog.source",
		"catalog_path":   "catalog.path",
		"catalog_bucket": "catalog.bucket",
		"catalog_key":    "catalog.key",
		"catalog_region": "catalog.region",

		// OpenAI mappings
		"openai_api_key":          "openai.api_key",
		"openai_base_url":         "openai.base_url",
		"openai_embedding_model":  "openai.embedding_model",
		"openai_chat_model":       "openai.chat_model",
		"openai_timeout":          "openai.timeout",
		"openai_requests_per_sec": "openai.requests_per_sec",
		"openai_burst":            "openai.burst",

		// Embedding cache mappings
		"embedding_cache_enabled": "embedding.cache_enabled",
		"embedding_cache_path":    "embedding.cache_path",

		// Recommendation engine mappings
		"recommend_default_top_n":      "recommend.default_top_n",
		"recommend_max_top_n":          "recommend.max_top_n",
		"recommend_seed_randomization": "recommend.seed_randomization",
		"recommend_cache_enabled":      "recommend.cache_enabled",
		"recommend_cache_ttl":          "recommend.cache_ttl",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped so stray environment variables cannot
	// pollute the configuration.
	return ""
}
