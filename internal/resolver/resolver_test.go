package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/goto/internal/config"
	"github.com/fyrsmithlabs/goto/internal/embeddings"
	"github.com/fyrsmithlabs/goto/internal/store"
)

// fixedEmbedder returns canned vectors, or fails when err is set.
type fixedEmbedder struct {
	queryVec []float32
	err      error
}

func (f *fixedEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = f.queryVec
	}
	return out, nil
}

func (f *fixedEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.queryVec, nil
}

func (f *fixedEmbedder) Dimension() int { return len(f.queryVec) }
func (f *fixedEmbedder) Close() error   { return nil }

type fixture struct {
	cfg      *config.Config
	store    *store.Store
	resolver *Resolver
}

func newFixture(t *testing.T, embedder embeddings.Provider) *fixture {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "registry.json"), filepath.Join(dir, "vectors"))
	require.NoError(t, err)

	cfg := config.Default()
	if embedder == nil {
		cfg.Embedding.Disabled = true
	}

	var lazy *embeddings.Lazy
	if embedder != nil {
		lazy = embeddings.NewLazy(func() (embeddings.Provider, error) {
			return embedder, nil
		})
	}

	return &fixture{
		cfg:      cfg,
		store:    st,
		resolver: New(cfg, st, lazy, zap.NewNop()),
	}
}

func (f *fixture) addProject(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	_, err := f.store.Registry().Upsert(store.Project{
		Path: dir, Name: name, IndexedAt: time.Now(),
	})
	require.NoError(t, err)
	return dir
}

func TestResolveEmptyStore(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.resolver.Resolve(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrEmptyStore)
}

func TestResolveNoMatch(t *testing.T) {
	f := newFixture(t, nil)
	f.addProject(t, "zebra")

	_, err := f.resolver.Resolve(context.Background(), "qqq")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestResolveBestMatchRecordsAccess(t *testing.T) {
	f := newFixture(t, nil)
	path := f.addProject(t, "documentation")

	res, err := f.resolver.Resolve(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.True(t, filepath.IsAbs(res.Path))

	got, err := f.store.Registry().Get(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.AccessCount)
	require.NotNil(t, got.LastAccessed)
}

func TestResolveSkipsStalePath(t *testing.T) {
	f := newFixture(t, nil)
	gone := filepath.Join(t.TempDir(), "api-gone")
	_, err := f.store.Registry().Upsert(store.Project{
		Path: gone, Name: "api-gone", IndexedAt: time.Now(),
	})
	require.NoError(t, err)
	alive := f.addProject(t, "api-alive")

	res, err := f.resolver.Resolve(context.Background(), "api")
	require.NoError(t, err)
	assert.Equal(t, alive, res.Path)
}

func TestResolveAllStaleDegradesToNoMatch(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.store.Registry().Upsert(store.Project{
		Path: filepath.Join(t.TempDir(), "api-gone"), Name: "api", IndexedAt: time.Now(),
	})
	require.NoError(t, err)

	_, err = f.resolver.Resolve(context.Background(), "api")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestResolveRecentMode(t *testing.T) {
	f := newFixture(t, nil)
	first := f.addProject(t, "alpha")
	second := f.addProject(t, "beta")

	require.NoError(t, f.store.RecordAccess(first, time.Now().Add(-time.Hour)))
	require.NoError(t, f.store.RecordAccess(second, time.Now()))

	res, err := f.resolver.Resolve(context.Background(), "-")
	require.NoError(t, err)
	assert.Equal(t, second, res.Path)
}

func TestResolveRecentModeEmptyStore(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.resolver.Resolve(context.Background(), "-")
	assert.ErrorIs(t, err, ErrEmptyStore)
}

func TestResolveRecentModeNothingVisited(t *testing.T) {
	f := newFixture(t, nil)
	f.addProject(t, "alpha")

	_, err := f.resolver.Resolve(context.Background(), "-")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestResolveSemanticOnlyMatch(t *testing.T) {
	embedder := &fixedEmbedder{queryVec: []float32{1, 0, 0}}
	f := newFixture(t, embedder)
	path := f.addProject(t, "foyer")

	vec, err := f.store.Vectors()
	require.NoError(t, err)
	require.NoError(t, vec.Set(context.Background(), path, "rust cache", []float32{1, 0, 0}))

	res, err := f.resolver.Resolve(context.Background(), "qqq")
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
}

func TestResolveDegradesWhenProviderFails(t *testing.T) {
	embedder := &fixedEmbedder{err: errors.New("model unavailable")}
	f := newFixture(t, embedder)
	path := f.addProject(t, "documentation")

	res, err := f.resolver.Resolve(context.Background(), "docs")
	require.NoError(t, err, "provider failure must not break lexical matching")
	assert.Equal(t, path, res.Path)
}

func TestResolvePostCommandValidated(t *testing.T) {
	f := newFixture(t, nil)
	f.addProject(t, "documentation")
	f.cfg.PostCommand = "nvim"

	res, err := f.resolver.Resolve(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, "nvim", res.PostCommand)
}

func TestResolvePostCommandUnknownDropped(t *testing.T) {
	f := newFixture(t, nil)
	f.addProject(t, "documentation")
	// Simulate a hand-edited config bypassing load-time validation.
	f.cfg.PostCommand = "rm -rf /"

	res, err := f.resolver.Resolve(context.Background(), "docs")
	require.NoError(t, err)
	assert.Empty(t, res.PostCommand)
}

func TestValidatePathContract(t *testing.T) {
	assert.ErrorIs(t, validatePath("relative/path"), ErrInvalidResult)
	assert.ErrorIs(t, validatePath("/with\nnewline"), ErrInvalidResult)
	assert.ErrorIs(t, validatePath("/does/not/exist"), ErrInvalidResult)
	assert.NoError(t, validatePath(os.TempDir()))
}

func TestRankReturnsAllAboveThreshold(t *testing.T) {
	f := newFixture(t, nil)
	f.addProject(t, "api-one")
	f.addProject(t, "api-two")
	f.addProject(t, "api-three")

	matches, err := f.resolver.Rank(context.Background(), "api")
	require.NoError(t, err)
	require.Len(t, matches, 3)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}
