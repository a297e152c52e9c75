package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestExtractEmptyDir(t *testing.T) {
	meta := NewExtractor().Extract(t.TempDir())
	assert.Empty(t, meta.Description)
	assert.Empty(t, meta.TechTags)
	assert.Empty(t, meta.ReadmeExcerpt)
}

func TestExtractPackageJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{
		"name": "web-app",
		"description": "A dashboard for metrics",
		"keywords": ["dashboard", "metrics"]
	}`)

	meta := NewExtractor().Extract(dir)
	assert.Equal(t, "A dashboard for metrics", meta.Description)
	assert.Equal(t, []string{"dashboard", "metrics"}, meta.Keywords)
	assert.Contains(t, meta.TechTags, "JavaScript")
}

func TestExtractCargoToml(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Cargo.toml", `[package]
name = "fast-cli"
description = "A fast command line tool"
keywords = ["cli", "terminal"]
`)

	meta := NewExtractor().Extract(dir)
	assert.Equal(t, "A fast command line tool", meta.Description)
	assert.Contains(t, meta.TechTags, "Rust")
}

func TestExtractPyprojectPoetryFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", `[tool.poetry]
name = "scraper"
description = "Scrapes listings"
`)

	meta := NewExtractor().Extract(dir)
	assert.Equal(t, "Scrapes listings", meta.Description)
	assert.Contains(t, meta.TechTags, "Python")
}

func TestManifestPriorityPackageJSONWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"description": "js side"}`)
	writeFile(t, dir, "Cargo.toml", "[package]\ndescription = \"rust side\"\n")

	meta := NewExtractor().Extract(dir)
	assert.Equal(t, "js side", meta.Description)
}

func TestReadmeExcerptSkipsNoise(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.md", `# my-project

[![build](https://img.shields.io/badge/build-passing-green)](x)

A terminal file manager with vim keybindings.
It supports previews.

## Install
`)

	meta := NewExtractor().Extract(dir)
	assert.Contains(t, meta.ReadmeExcerpt, "terminal file manager")
	assert.NotContains(t, meta.ReadmeExcerpt, "shields.io")
	assert.NotContains(t, meta.ReadmeExcerpt, "# my-project")
}

func TestReadmeExcerptTruncatesAtWordBoundary(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("alpha beta gamma delta ", 200)
	writeFile(t, dir, "README.md", long)

	meta := NewExtractor().Extract(dir)
	require.NotEmpty(t, meta.ReadmeExcerpt)
	assert.LessOrEqual(t, len(meta.ReadmeExcerpt), readmeMaxChars+len("..."))
	assert.True(t, strings.HasSuffix(meta.ReadmeExcerpt, "..."))
	assert.NotContains(t, meta.ReadmeExcerpt, "  ")
}

func TestTagTableDetectsInfraAndExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Dockerfile", "FROM alpine\n")
	writeFile(t, dir, "go.mod", "module example.com/x\n")
	writeFile(t, dir, "src/main.ts", "export class Runner {}\n")

	tags := DefaultTagTable().Detect(dir)
	assert.Contains(t, tags, "Docker")
	assert.Contains(t, tags, "Go")
	assert.Contains(t, tags, "TypeScript")
}

func TestTagTableDeduplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/x\n")
	writeFile(t, dir, "main.go", "package main\n")

	tags := DefaultTagTable().Detect(dir)
	count := 0
	for _, tag := range tags {
		if tag == "Go" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestTypeNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "engine.go", `package engine

type RenderPipeline struct{}

type Config struct{}

type Ab struct{}

type SceneGraph interface{}
`)
	writeFile(t, dir, "engine_test.go", `package engine

type LeakedFromTest struct{}
`)

	names := typeNames(dir)
	assert.Contains(t, names, "RenderPipeline")
	assert.Contains(t, names, "SceneGraph")
	assert.NotContains(t, names, "Config", "generic names are dropped")
	assert.NotContains(t, names, "Ab", "short names are dropped")
	assert.NotContains(t, names, "LeakedFromTest", "test files are skipped")
}

func TestStructureHints(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "rendering"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "pkg"), 0o755))

	hints := structureHints(dir)
	assert.Contains(t, hints, "rendering")
	assert.NotContains(t, hints, "src")
	assert.NotContains(t, hints, "node_modules")
}

func TestEmbeddingTextLayout(t *testing.T) {
	meta := Metadata{
		Description: "A game engine",
		Keywords:    []string{"graphics", "vulkan"},
		TechTags:    []string{"Rust"},
		TypeNames:   []string{"RenderPipeline"},
	}

	text := meta.EmbeddingText("voxel-engine")
	assert.True(t, strings.HasPrefix(text, "voxel-engine | "))
	assert.Contains(t, text, "A game engine")
	assert.Contains(t, text, "graphics, vulkan")
	assert.Contains(t, text, "Technologies: Rust")
	assert.Contains(t, text, "Types: RenderPipeline")
	assert.Contains(t, text, "backend")
}
