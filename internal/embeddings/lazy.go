package embeddings

import (
	"context"
	"sync"
)

// Lazy defers provider construction to first use. Model downloads and ONNX
// runtime setup are expensive, and most commands never embed anything, so
// the real provider is built only when a caller actually asks for vectors.
// A failed construction is cached and returned on every subsequent call.
type Lazy struct {
	construct func() (Provider, error)

	once     sync.Once
	provider Provider
	err      error
}

// NewLazy wraps a provider constructor.
func NewLazy(construct func() (Provider, error)) *Lazy {
	return &Lazy{construct: construct}
}

func (l *Lazy) get() (Provider, error) {
	l.once.Do(func() {
		l.provider, l.err = l.construct()
	})
	return l.provider, l.err
}

// Ready reports whether the provider has been constructed successfully.
// It never triggers construction.
func (l *Lazy) Ready() bool {
	return l.provider != nil && l.err == nil
}

// EmbedDocuments generates embeddings for multiple texts.
func (l *Lazy) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	p, err := l.get()
	if err != nil {
		return nil, err
	}
	return p.EmbedDocuments(ctx, texts)
}

// EmbedQuery generates an embedding for a single query.
func (l *Lazy) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	p, err := l.get()
	if err != nil {
		return nil, err
	}
	return p.EmbedQuery(ctx, text)
}

// Dimension returns the embedding dimension, or 0 when the provider is
// unavailable.
func (l *Lazy) Dimension() int {
	p, err := l.get()
	if err != nil {
		return 0
	}
	return p.Dimension()
}

// Close releases the underlying provider if it was ever constructed.
func (l *Lazy) Close() error {
	if l.provider == nil {
		return nil
	}
	return l.provider.Close()
}
