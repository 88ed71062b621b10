// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

// Package main is the entry point for the Aromatch server.
//
// Aromatch recommends perfumes for a five-keyword mood query by fusing
// a TF-IDF lexical scorer with an embedding-based semantic scorer and
// diversifying the blended ranking, and analyzes an eight-question
// scent-habit quiz into a personality profile with its own matches.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, YAML file, env)
//  2. Logging: zerolog with configured level and format
//  3. Catalog: perfume dataset from a local CSV file or an S3 object
//  4. Embedder: OpenAI embeddings behind a rate limiter, circuit
//     breaker, and optional Badger on-disk vector cache
//  5. Scorers: lexical TF-IDF model and semantic embedding index
//  6. Engine: fusion, diversity selection, worker pool
//  7. Scenario generator and persona recommender
//  8. HTTP server: Chi router with graceful shutdown
//
// # Configuration
//
// Configuration is merged from struct defaults, an optional YAML file
// (AROMATCH_CONFIG_PATH or the default search paths), and AROMATCH_*
// environment variables. The OpenAI API key is required for production
// use:
//
//	export AROMATCH_OPENAI_API_KEY=sk-...
//	export AROMATCH_CATALOG_PATH=data/perfumes.csv
//	./aromatch
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests within the
// configured timeout, and closes the worker pool and embedding cache.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	openai "github.com/sashabaranov/go-openai"

	"github.com/perfumeonme/aromatch/internal/api"
	"github.com/perfumeonme/aromatch/internal/catalog"
	"github.com/perfumeonme/aromatch/internal/config"
	"github.com/perfumeonme/aromatch/internal/embedding"
	"github.com/perfumeonme/aromatch/internal/logging"
	"github.com/perfumeonme/aromatch/internal/persona"
	"github.com/perfumeonme/aromatch/internal/recommend"
	"github.com/perfumeonme/aromatch/internal/scenario"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("catalog_source", cfg.Catalog.Source).
		Str("embedding_model", cfg.OpenAI.EmbeddingModel).
		Bool("seed_randomization", cfg.Recommend.SeedRandomization).
		Msg("Starting Aromatch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	table, err := loadCatalog(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load perfume catalog")
	}
	logging.Info().Int("perfumes", table.Len()).Msg("Catalog loaded")

	openaiClient := newOpenAIClient(cfg)

	embedder, closeEmbedder, err := newEmbedder(cfg, openaiClient)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize embedder")
	}
	defer closeEmbedder()

	engineCfg := recommend.DefaultConfig()
	engineCfg.DefaultTopN = cfg.Recommend.DefaultTopN
	engineCfg.SeedRandomization = cfg.Recommend.SeedRandomization

	lexical := recommend.NewLexicalScorer(table, engineCfg)
	semantic, err := recommend.NewSemanticScorer(ctx, table, engineCfg, embedder)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build the semantic index")
	}

	pool := recommend.NewWorkerPool(2)
	defer pool.Close()

	engine := recommend.NewEngine(engineCfg, lexical, semantic, pool, recommend.EngineOptions{
		CacheEnabled: cfg.Recommend.CacheEnabled,
		CacheTTL:     cfg.Recommend.CacheTTL,
	})

	scenarios := scenario.NewGenerator(openaiClient, scenario.Config{
		Model:   cfg.OpenAI.ChatModel,
		Timeout: cfg.OpenAI.Timeout,
	})
	service := recommend.NewService(engine, scenarios, pool)

	personaRec, err := persona.NewRecommender(ctx, table, embedder)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build the persona index")
	}

	handlers := api.NewHandlers(cfg, service, personaRec)
	router := api.NewRouter(cfg, handlers)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		serverErr <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logging.Info().Msg("Server stopped")
}

// loadCatalog reads the perfume dataset from the configured source.
func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Table, error) {
	switch cfg.Catalog.Source {
	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Catalog.Region))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return catalog.LoadS3(ctx, s3.NewFromConfig(awsCfg), cfg.Catalog.Bucket, cfg.Catalog.Key)
	default:
		return catalog.LoadFile(ctx, cfg.Catalog.Path)
	}
}

// newOpenAIClient builds the shared OpenAI client, honoring a custom
// base URL for proxies and compatible endpoints.
func newOpenAIClient(cfg *config.Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAI.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// newEmbedder wires the OpenAI embedder with its optional on-disk
// cache. The returned close function flushes the cache on shutdown.
func newEmbedder(cfg *config.Config, client *openai.Client) (embedding.Embedder, func(), error) {
	base := embedding.NewOpenAIEmbedder(client, embedding.OpenAIConfig{
		Model:          cfg.OpenAI.EmbeddingModel,
		RequestsPerSec: cfg.OpenAI.RequestsPerSec,
		Burst:          cfg.OpenAI.Burst,
		Timeout:        cfg.OpenAI.Timeout,
	})

	if !cfg.Embedding.CacheEnabled {
		return base, func() {}, nil
	}

	cached, err := embedding.NewCachedEmbedder(base, cfg.Embedding.CachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open embedding cache: %w", err)
	}
	return cached, func() {
		if err := cached.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing embedding cache")
		}
	}, nil
}
