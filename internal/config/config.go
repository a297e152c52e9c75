// Package config provides persisted configuration for goto.
//
// Configuration lives in a YAML file under the user's config directory and
// can be overridden per-invocation with GOTO_* environment variables. It is
// loaded exactly once at process entry and handed to components explicitly;
// nothing in this package is ambient state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PostCommands is the closed set of post-navigation directive names the core
// is allowed to emit. The shell wrapper keeps its own whitelist; anything
// outside this set is dropped here and never reaches the wrapper.
var PostCommands = map[string]bool{
	"claude": true,
	"code":   true,
	"cursor": true,
	"zed":    true,
	"vim":    true,
	"nvim":   true,
	"emacs":  true,
	"idea":   true,
	"subl":   true,
}

// ScanPath is one registered scan root.
type ScanPath struct {
	// Path is the canonical absolute root directory.
	Path string `koanf:"path"`

	// Recursive enables descending below the root. When false only the
	// root's immediate children are considered.
	Recursive bool `koanf:"recursive"`

	// MaxDepth overrides Config.MaxDepth for this root when > 0.
	MaxDepth int `koanf:"max_depth"`

	// Exclude is an additional glob set for this root; the default
	// exclusion set always applies.
	Exclude []string `koanf:"exclude"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	// Provider selects the backend: "fastembed" (local, default) or "tei"
	// (any OpenAI-compatible endpoint).
	Provider string `koanf:"provider"`

	// Model is the embedding model name.
	Model string `koanf:"model"`

	// BaseURL is the endpoint for the tei provider.
	BaseURL string `koanf:"base_url"`

	// CacheDir is where fastembed caches downloaded model files.
	CacheDir string `koanf:"cache_dir"`

	// Timeout bounds remote embedding requests. Expiry degrades ranking
	// to lexical-only rather than blocking.
	Timeout time.Duration `koanf:"timeout"`

	// Disabled turns embeddings off entirely (lexical-only mode).
	Disabled bool `koanf:"disabled"`
}

// Config is the complete goto configuration.
type Config struct {
	// ScanPaths are the registered roots to discover projects under.
	ScanPaths []ScanPath `koanf:"scan_paths"`

	// DiscoveryAssist enables the OS search index (mdfind on macOS) as an
	// additional discovery source during scans.
	DiscoveryAssist bool `koanf:"discovery_assist"`

	// MaxDepth is the default recursion limit for scan roots.
	MaxDepth int `koanf:"max_depth"`

	// PostCommand, when set, is emitted after a successful navigation as a
	// __GOTO_POST_CMD__ directive. Must be a member of PostCommands.
	PostCommand string `koanf:"post_command"`

	// Embedding configures the semantic layer.
	Embedding EmbeddingConfig `koanf:"embedding"`

	// LogLevel is the minimum diagnostic level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`

	// configDir/dataDir are resolved at load time, not persisted.
	configDir string
	dataDir   string
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		DiscoveryAssist: false,
		MaxDepth:        5,
		Embedding: EmbeddingConfig{
			Provider: "fastembed",
			Model:    "sentence-transformers/all-MiniLM-L6-v2",
			Timeout:  30 * time.Second,
		},
		LogLevel: "warn",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1, got %d", c.MaxDepth)
	}
	if c.PostCommand != "" && !PostCommands[c.PostCommand] {
		return fmt.Errorf("post_command %q is not in the allowed set", c.PostCommand)
	}
	switch c.Embedding.Provider {
	case "", "fastembed", "tei", "openai":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}
	for _, sp := range c.ScanPaths {
		if sp.Path == "" {
			return fmt.Errorf("scan path with empty path")
		}
		if !filepath.IsAbs(sp.Path) {
			return fmt.Errorf("scan path %q is not absolute", sp.Path)
		}
	}
	return nil
}

// ConfigDir returns the directory holding the config file.
func (c *Config) ConfigDir() string { return c.configDir }

// DataDir returns the directory holding the registry and vector index.
func (c *Config) DataDir() string { return c.dataDir }

// RegistryPath returns the on-disk location of the project registry.
func (c *Config) RegistryPath() string { return filepath.Join(c.dataDir, "registry.json") }

// VectorDir returns the on-disk location of the embedded vector index.
func (c *Config) VectorDir() string { return filepath.Join(c.dataDir, "vectors") }

// ModelCacheDir returns where embedding model files are cached.
func (c *Config) ModelCacheDir() string {
	if c.Embedding.CacheDir != "" {
		return c.Embedding.CacheDir
	}
	return filepath.Join(c.dataDir, "models")
}

// AddScanPath registers a root, canonicalizing it first. Adding a root that
// is already registered is a no-op. Returns the canonical path.
func (c *Config) AddScanPath(path string) (string, error) {
	canonical, err := Canonicalize(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return "", fmt.Errorf("path does not exist: %s", canonical)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", canonical)
	}
	for _, sp := range c.ScanPaths {
		if sp.Path == canonical {
			return canonical, nil
		}
	}
	c.ScanPaths = append(c.ScanPaths, ScanPath{Path: canonical, Recursive: true})
	return canonical, nil
}

// RemoveScanPath unregisters a root. Returns false if it was not registered.
func (c *Config) RemoveScanPath(path string) (string, bool) {
	canonical, err := Canonicalize(path)
	if err != nil {
		canonical = filepath.Clean(path)
	}
	kept := c.ScanPaths[:0]
	removed := false
	for _, sp := range c.ScanPaths {
		if sp.Path == canonical {
			removed = true
			continue
		}
		kept = append(kept, sp)
	}
	c.ScanPaths = kept
	return canonical, removed
}

// Canonicalize resolves a path to its absolute, symlink-free form with no
// trailing separator. Symlink resolution is best-effort for paths that do
// not exist yet.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return filepath.Clean(abs), nil
}
