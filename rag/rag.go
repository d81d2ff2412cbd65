package rag

import (
	"context"

	"matchday/config"
	"matchday/web/types"

	"go.uber.org/zap"
)

// Embedder converts free text to a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher performs nearest-neighbor lookup over the embedding table.
type Searcher interface {
	SearchEmbeddings(ctx context.Context, queryEmbedding []float32, matchCount int, filter map[string]string) ([]types.SearchResult, error)
}

// Generator produces a narrative answer from an assembled prompt.
type Generator interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Service orchestrates the semantic-query pipeline:
// validate, embed, search, assemble, generate.
type Service struct {
	cfg       *config.Config
	embedder  Embedder
	searcher  Searcher
	generator Generator
	logger    *zap.Logger
}

func New(cfg *config.Config, embedder Embedder, searcher Searcher, generator Generator, logger *zap.Logger) *Service {
	return &Service{
		cfg:       cfg,
		embedder:  embedder,
		searcher:  searcher,
		generator: generator,
		logger:    logger,
	}
}
