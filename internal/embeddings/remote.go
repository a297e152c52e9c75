package embeddings

import (
	"context"
	"fmt"

	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// RemoteConfig holds configuration for an OpenAI-compatible embedding
// endpoint, including TEI's /v1 surface.
type RemoteConfig struct {
	// BaseURL is the endpoint base URL, e.g. http://localhost:8080/v1
	// for TEI or https://api.openai.com/v1 for OpenAI.
	BaseURL string

	// Model is the embedding model name.
	Model string

	// APIKey authenticates the request. Optional for TEI.
	APIKey string
}

// RemoteProvider generates embeddings over HTTP via langchaingo.
type RemoteProvider struct {
	embedder  *lcembeddings.EmbedderImpl
	dimension int
}

// NewRemoteProvider creates a provider backed by an OpenAI-compatible API.
func NewRemoteProvider(cfg RemoteConfig) (*RemoteProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL required for remote provider", ErrInvalidConfig)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		// langchaingo requires a token, TEI ignores it.
		apiKey = "not-needed"
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithEmbeddingModel(cfg.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	embedder, err := lcembeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &RemoteProvider{
		embedder:  embedder,
		dimension: detectDimensionFromModel(cfg.Model),
	}, nil
}

// EmbedDocuments generates embeddings for multiple texts.
func (p *RemoteProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}
	vecs, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	return vecs, nil
}

// EmbedQuery generates an embedding for a single query.
func (p *RemoteProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}
	vec, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	return vec, nil
}

// Dimension returns the embedding dimension based on the configured model.
func (p *RemoteProvider) Dimension() int {
	return p.dimension
}

// Close is a no-op; the provider holds no local resources.
func (p *RemoteProvider) Close() error {
	return nil
}
