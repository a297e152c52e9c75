// Package scanner discovers project directories under configured scan
// paths.
//
// A directory is a project boundary when it carries a version-control
// marker or a build manifest. Scanning never descends below a boundary:
// nested modules inside a repository belong to that repository.
package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/goto/internal/config"
)

// ErrNoScanPaths indicates the configuration names no scan paths.
var ErrNoScanPaths = errors.New("no scan paths configured")

// maxConcurrentRoots bounds how many scan paths are walked in parallel.
const maxConcurrentRoots = 4

// vcsMarkers mark a directory as the root of a working copy.
var vcsMarkers = []string{".git", ".hg", ".svn", ".jj"}

// manifestMarkers mark a directory as a project root even without
// version control.
var manifestMarkers = []string{
	"go.mod",
	"Cargo.toml",
	"package.json",
	"pyproject.toml",
	"setup.py",
	"pom.xml",
	"build.gradle",
	"build.gradle.kts",
	"Gemfile",
	"mix.exs",
	"CMakeLists.txt",
	"Package.swift",
	"composer.json",
	"stack.yaml",
	"dune-project",
}

// defaultExcludes are directory names never worth descending into.
var defaultExcludes = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"dist":         true,
	"build":        true,
	"__pycache__":  true,
	".cache":       true,
	".venv":        true,
	"venv":         true,
}

// Candidate is a discovered project directory.
type Candidate struct {
	// Path is the canonical absolute path.
	Path string

	// Name is the directory base name.
	Name string
}

// Scanner walks configured scan paths looking for project boundaries.
type Scanner struct {
	paths           []config.ScanPath
	defaultMaxDepth int
	discoveryAssist bool
	logger          *zap.Logger
}

// New creates a scanner from configuration.
func New(cfg *config.Config, logger *zap.Logger) *Scanner {
	return &Scanner{
		paths:           cfg.ScanPaths,
		defaultMaxDepth: cfg.MaxDepth,
		discoveryAssist: cfg.DiscoveryAssist,
		logger:          logger,
	}
}

// Scan walks every scan path and returns discovered projects, sorted by
// path and deduplicated. Invalid scan paths are logged and skipped; Scan
// fails only when no scan paths are configured at all.
func (s *Scanner) Scan(ctx context.Context) ([]Candidate, error) {
	if len(s.paths) == 0 {
		return nil, ErrNoScanPaths
	}

	results := make(chan Candidate, 64)
	sem := make(chan struct{}, maxConcurrentRoots)

	var wg sync.WaitGroup
	for _, sp := range s.paths {
		info, err := os.Stat(sp.Path)
		if err != nil || !info.IsDir() {
			s.logger.Warn("skipping invalid scan path",
				zap.String("path", sp.Path),
				zap.Error(err))
			continue
		}

		wg.Add(1)
		go func(sp config.ScanPath) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			s.walkRoot(ctx, sp, results)
		}(sp)
	}

	if s.discoveryAssist {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.discover(ctx, results)
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	seen := make(map[string]bool)
	var out []Candidate
	for c := range results {
		if seen[c.Path] {
			continue
		}
		seen[c.Path] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// walkRoot recursively scans one configured path.
func (s *Scanner) walkRoot(ctx context.Context, sp config.ScanPath, results chan<- Candidate) {
	maxDepth := sp.MaxDepth
	if maxDepth <= 0 {
		maxDepth = s.defaultMaxDepth
	}
	if !sp.Recursive {
		maxDepth = 1
	}
	s.walkDir(ctx, sp, sp.Path, 0, maxDepth, results)
}

func (s *Scanner) walkDir(ctx context.Context, sp config.ScanPath, dir string, depth, maxDepth int, results chan<- Candidate) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	if IsProjectRoot(dir) {
		if canonical, err := config.Canonicalize(dir); err == nil {
			results <- Candidate{Path: canonical, Name: filepath.Base(canonical)}
		}
		return
	}
	if depth >= maxDepth {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Debug("unreadable directory", zap.String("path", dir), zap.Error(err))
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if s.excluded(sp, name) {
			continue
		}
		s.walkDir(ctx, sp, filepath.Join(dir, name), depth+1, maxDepth, results)
	}
}

func (s *Scanner) excluded(sp config.ScanPath, name string) bool {
	if strings.HasPrefix(name, ".") || defaultExcludes[name] {
		return true
	}
	for _, pattern := range sp.Exclude {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// IsProjectRoot reports whether dir carries a version-control marker or a
// build manifest.
func IsProjectRoot(dir string) bool {
	for _, marker := range vcsMarkers {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.IsDir() {
			return true
		}
	}
	for _, marker := range manifestMarkers {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
