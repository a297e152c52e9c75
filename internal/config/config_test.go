package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestDirs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("GOTO_CONFIG_DIR", dir)
	t.Setenv("GOTO_DATA_DIR", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	setTestDirs(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxDepth)
	assert.Equal(t, "fastembed", cfg.Embedding.Provider)
	assert.Equal(t, "sentence-transformers/all-MiniLM-L6-v2", cfg.Embedding.Model)
	assert.Equal(t, 30*time.Second, cfg.Embedding.Timeout)
	assert.False(t, cfg.DiscoveryAssist)
	assert.Empty(t, cfg.ScanPaths)
}

func TestLoadFromFile(t *testing.T) {
	dir := setTestDirs(t)

	content := `
scan_paths:
  - path: /tmp
    recursive: true
    max_depth: 3
max_depth: 7
post_command: nvim
embedding:
  provider: tei
  base_url: http://localhost:8080/v1
  timeout: 5s
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)

	require.Len(t, cfg.ScanPaths, 1)
	assert.Equal(t, "/tmp", cfg.ScanPaths[0].Path)
	assert.Equal(t, 3, cfg.ScanPaths[0].MaxDepth)
	assert.Equal(t, 7, cfg.MaxDepth)
	assert.Equal(t, "nvim", cfg.PostCommand)
	assert.Equal(t, "tei", cfg.Embedding.Provider)
	assert.Equal(t, 5*time.Second, cfg.Embedding.Timeout)
}

func TestLoadEnvOverride(t *testing.T) {
	setTestDirs(t)
	t.Setenv("GOTO_MAX_DEPTH", "9")
	t.Setenv("GOTO_EMBEDDING_PROVIDER", "tei")
	t.Setenv("GOTO_EMBEDDING_BASE_URL", "http://example:9000/v1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.MaxDepth)
	assert.Equal(t, "tei", cfg.Embedding.Provider)
	assert.Equal(t, "http://example:9000/v1", cfg.Embedding.BaseURL)
}

func TestLoadRejectsUnknownPostCommand(t *testing.T) {
	dir := setTestDirs(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("post_command: rm\n"), 0o600))

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post_command")
}

func TestSaveRoundTrip(t *testing.T) {
	dir := setTestDirs(t)

	cfg, err := Load("")
	require.NoError(t, err)

	_, err = cfg.AddScanPath(dir)
	require.NoError(t, err)
	cfg.PostCommand = "code"
	require.NoError(t, cfg.Save())

	reloaded, err := Load("")
	require.NoError(t, err)
	require.Len(t, reloaded.ScanPaths, 1)
	assert.Equal(t, cfg.ScanPaths[0].Path, reloaded.ScanPaths[0].Path)
	assert.True(t, reloaded.ScanPaths[0].Recursive)
	assert.Equal(t, "code", reloaded.PostCommand)
}

func TestAddScanPath(t *testing.T) {
	setTestDirs(t)
	cfg := Default()

	target := t.TempDir()
	canonical, err := cfg.AddScanPath(target)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(canonical))
	require.Len(t, cfg.ScanPaths, 1)

	// Adding again is a no-op.
	_, err = cfg.AddScanPath(target)
	require.NoError(t, err)
	assert.Len(t, cfg.ScanPaths, 1)

	// Missing paths are rejected.
	_, err = cfg.AddScanPath(filepath.Join(target, "nope"))
	require.Error(t, err)
}

func TestRemoveScanPath(t *testing.T) {
	setTestDirs(t)
	cfg := Default()

	target := t.TempDir()
	canonical, err := cfg.AddScanPath(target)
	require.NoError(t, err)

	_, removed := cfg.RemoveScanPath(canonical)
	assert.True(t, removed)
	assert.Empty(t, cfg.ScanPaths)

	_, removed = cfg.RemoveScanPath(canonical)
	assert.False(t, removed)
}

func TestCanonicalizeStripsTrailingSeparator(t *testing.T) {
	dir := t.TempDir()
	got, err := Canonicalize(dir + string(filepath.Separator))
	require.NoError(t, err)
	assert.NotEqual(t, string(filepath.Separator), got[len(got)-1:])
}
