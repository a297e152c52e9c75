// Package embeddings provides embedding generation via multiple providers.
//
// The local fastembed provider runs ONNX models on the machine; the tei
// provider talks to any OpenAI-compatible embedding endpoint. Both sit
// behind the Provider interface so callers never branch on which one is
// configured.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/goto/internal/config"
)

var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid provider configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrDisabled indicates embeddings are disabled by configuration.
	ErrDisabled = errors.New("embeddings disabled")
)

// Provider generates embeddings for project descriptions and queries.
type Provider interface {
	// EmbedDocuments generates embeddings for multiple texts.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// Dimension returns the embedding dimension for the current model.
	Dimension() int
	// Close releases resources held by the provider.
	Close() error
}

// NewProvider creates an embedding provider from configuration.
func NewProvider(cfg config.EmbeddingConfig) (Provider, error) {
	if cfg.Disabled {
		return nil, ErrDisabled
	}

	switch cfg.Provider {
	case "fastembed", "":
		return NewFastEmbedProvider(FastEmbedConfig{
			Model:    cfg.Model,
			CacheDir: cfg.CacheDir,
		})
	case "tei", "openai":
		return NewRemoteProvider(RemoteConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// detectDimensionFromModel returns the embedding dimension for a model
// name, falling back to 384 for unknown models.
func detectDimensionFromModel(model string) int {
	if dim, ok := fastEmbedModelDimension(model); ok {
		return dim
	}
	switch {
	case strings.Contains(model, "large"):
		return 1024
	case strings.Contains(model, "base"):
		return 768
	default:
		return 384
	}
}
