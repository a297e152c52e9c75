// Package resolver turns a query into a single navigable project path.
//
// The contract with the shell wrapper is strict: a successful resolution
// produces exactly one absolute, existing directory path and nothing else
// on the primary channel. Everything this package reports goes through the
// logger, which writes to stderr.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/goto/internal/config"
	"github.com/fyrsmithlabs/goto/internal/embeddings"
	"github.com/fyrsmithlabs/goto/internal/ranker"
	"github.com/fyrsmithlabs/goto/internal/store"
)

var (
	// ErrNoMatch indicates no candidate cleared the match threshold.
	ErrNoMatch = errors.New("no matching project found")

	// ErrEmptyStore indicates the store holds no projects at all.
	ErrEmptyStore = errors.New("no projects indexed (run a scan first)")

	// ErrInvalidResult indicates the resolver was about to emit something
	// that violates the output contract. This is an internal bug, never a
	// user error.
	ErrInvalidResult = errors.New("internal error: resolved path violates output contract")
)

// Result is a successful resolution.
type Result struct {
	// Path is the absolute path to navigate to.
	Path string

	// PostCommand is the validated post-navigation directive name, empty
	// when none is configured.
	PostCommand string

	// Score is the winning total score; zero in recent mode.
	Score float64
}

// Resolver ranks indexed projects against queries.
type Resolver struct {
	cfg      *config.Config
	store    *store.Store
	embedder *embeddings.Lazy
	logger   *zap.Logger
}

// New creates a resolver. embedder may be nil when embeddings are
// disabled.
func New(cfg *config.Config, st *store.Store, embedder *embeddings.Lazy, logger *zap.Logger) *Resolver {
	return &Resolver{cfg: cfg, store: st, embedder: embedder, logger: logger}
}

// Resolve picks the best project for the query. The query "-" selects the
// most recently visited project instead of scoring.
func (r *Resolver) Resolve(ctx context.Context, query string) (Result, error) {
	if strings.TrimSpace(query) == "-" {
		return r.resolveRecent()
	}

	matches, err := r.Rank(ctx, query)
	if err != nil {
		return Result{}, err
	}

	for _, m := range matches {
		if !dirExists(m.Project.Path) {
			r.logger.Debug("skipping stale project",
				zap.String("path", m.Project.Path))
			continue
		}
		return r.finish(m.Project.Path, m.Score)
	}
	return Result{}, fmt.Errorf("%w: %q", ErrNoMatch, query)
}

// Rank returns every candidate clearing the threshold, best first, with
// stale paths already excluded.
func (r *Resolver) Rank(ctx context.Context, query string) ([]ranker.Match, error) {
	projects := r.store.Registry().All()
	if len(projects) == 0 {
		return nil, ErrEmptyStore
	}

	semantic := r.semanticScores(ctx, query)
	matches := ranker.Rank(query, projects, semantic)

	live := matches[:0]
	for _, m := range matches {
		if dirExists(m.Project.Path) {
			live = append(live, m)
		}
	}
	return live, nil
}

// semanticScores embeds the query and ranks stored vectors against it.
// Any failure degrades to lexical-only matching with a warning; semantic
// search is never allowed to break navigation.
func (r *Resolver) semanticScores(ctx context.Context, query string) map[string]float64 {
	if r.embedder == nil || r.cfg.Embedding.Disabled {
		return nil
	}

	queryCtx := ctx
	if r.cfg.Embedding.Timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, r.cfg.Embedding.Timeout)
		defer cancel()
	}

	vec, err := r.embedder.EmbedQuery(queryCtx, query)
	if err != nil {
		r.logger.Warn("embedding provider unavailable, matching lexically only",
			zap.Error(err))
		return nil
	}

	index, err := r.store.Vectors()
	if err != nil {
		r.logger.Warn("vector index unavailable, matching lexically only",
			zap.Error(err))
		return nil
	}
	hits, err := index.Similarities(queryCtx, vec, 0)
	if err != nil {
		r.logger.Warn("vector query failed, matching lexically only",
			zap.Error(err))
		return nil
	}

	scores := make(map[string]float64, len(hits))
	for _, h := range hits {
		scores[h.Path] = h.Score
	}
	return scores
}

// resolveRecent returns the most recently visited project that still
// exists on disk.
func (r *Resolver) resolveRecent() (Result, error) {
	projects := r.store.Registry().All()
	if len(projects) == 0 {
		return Result{}, ErrEmptyStore
	}

	for _, p := range ranker.Recent(projects, 0) {
		if dirExists(p.Path) {
			return r.finish(p.Path, 0)
		}
	}
	return Result{}, fmt.Errorf("%w: no previously visited project", ErrNoMatch)
}

// finish validates the output contract, records the access, and builds
// the result.
func (r *Resolver) finish(path string, score float64) (Result, error) {
	if err := validatePath(path); err != nil {
		return Result{}, err
	}

	if err := r.store.RecordAccess(path, time.Now()); err != nil {
		// Navigation still succeeds; only the habit signal is lost.
		r.logger.Warn("recording access failed",
			zap.String("path", path),
			zap.Error(err))
	}

	return Result{
		Path:        path,
		PostCommand: r.postCommand(),
		Score:       score,
	}, nil
}

// postCommand re-validates the configured directive against the closed
// set. An unknown name is dropped here even if a stale or hand-edited
// config slipped past load-time validation.
func (r *Resolver) postCommand() string {
	name := r.cfg.PostCommand
	if name == "" {
		return ""
	}
	if !config.PostCommands[name] {
		r.logger.Warn("ignoring unknown post command", zap.String("name", name))
		return ""
	}
	return name
}

// validatePath enforces the primary-channel contract: one line, absolute,
// an existing directory.
func validatePath(path string) error {
	if strings.ContainsAny(path, "\n\r") {
		return fmt.Errorf("%w: path contains a line break", ErrInvalidResult)
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: path %q is not absolute", ErrInvalidResult, path)
	}
	if !dirExists(path) {
		return fmt.Errorf("%w: path %q is not an existing directory", ErrInvalidResult, path)
	}
	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
