// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults pass",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "file source without path",
			mutate:  func(c *Config) { c.Catalog.Source = "file"; c.Catalog.Path = "" },
			wantErr: true,
		},
		{
			name: "s3 source without bucket",
			mutate: func(c *Config) {
				c.Catalog.Source = "s3"
				c.Catalog.Bucket = ""
			},
			wantErr: true,
		},
		{
			name: "s3 source with bucket and key",
			mutate: func(c *Config) {
				c.Catalog.Source = "s3"
				c.Catalog.Bucket = "perfume-data"
				c.Catalog.Key = "catalog.csv"
			},
			wantErr: false,
		},
		{
			name:    "unknown catalog source",
			mutate:  func(c *Config) { c.Catalog.Source = "gopher" },
			wantErr: true,
		},
		{
			name:    "empty embedding model",
			mutate:  func(c *Config) { c.OpenAI.EmbeddingModel = "" },
			wantErr: true,
		},
		{
			name:    "non-positive openai timeout",
			mutate:  func(c *Config) { c.OpenAI.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "zero default top n",
			mutate:  func(c *Config) { c.Recommend.DefaultTopN = 0 },
			wantErr: true,
		},
		{
			name: "max top n below default",
			mutate: func(c *Config) {
				c.Recommend.DefaultTopN = 10
				c.Recommend.MaxTopN = 5
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9999
logging:
  level: debug
recommend:
  default_top_n: 5
  max_top_n: 10
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Recommend.DefaultTopN != 5 {
		t.Errorf("Recommend.DefaultTopN = %d, want 5", cfg.Recommend.DefaultTopN)
	}
	// Untouched fields keep their defaults
	if cfg.OpenAI.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("OpenAI.EmbeddingModel = %q, want default", cfg.OpenAI.EmbeddingModel)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("AROMATCH_SERVER_PORT", "8123")
	t.Setenv("AROMATCH_OPENAI_TIMEOUT", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8123 {
		t.Errorf("Server.Port = %d, want env override 8123", cfg.Server.Port)
	}
	if cfg.OpenAI.Timeout != 45*time.Second {
		t.Errorf("OpenAI.Timeout = %v, want 45s", cfg.OpenAI.Timeout)
	}
}

func TestLoadCORSOriginsFromEnv(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("AROMATCH_SERVER_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Server.CORSOrigins[i], want[i])
		}
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"AROMATCH_SERVER_PORT", "server.port"},
		{"AROMATCH_OPENAI_API_KEY", "openai.api_key"},
		{"AROMATCH_CATALOG_SOURCE", "catalog.source"},
		{"AROMATCH_RECOMMEND_SEED_RANDOMIZATION", "recommend.seed_randomization"},
		{"AROMATCH_UNKNOWN_SETTING", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
