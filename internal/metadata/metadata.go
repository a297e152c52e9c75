// Package metadata extracts a semantic description from a project directory.
//
// Extraction is best-effort throughout: a missing or unreadable manifest,
// README, or source file contributes nothing rather than failing the
// project. The result is a single labeled text blob that serves both as the
// embedding input and as the lexical corpus for the metadata boost.
package metadata

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxStructureHints caps the number of directory names kept.
const maxStructureHints = 15

// genericDirs are directory names with no semantic value for a project
// description. Matching is case-insensitive.
var genericDirs = map[string]bool{
	"src": true, "lib": true, "bin": true, "cmd": true, "pkg": true,
	"app": true, "apps": true, "main": true, "java": true, "kotlin": true,
	"scala": true, "resources": true, "test": true, "tests": true,
	"spec": true, "specs": true, "integration": true,
	"com": true, "org": true, "io": true, "net": true, "dev": true,
	"github": true, "impl": true, "internal": true, "api": true,
	"core": true, "base": true, "util": true, "utils": true,
	"helper": true, "helpers": true, "common": true, "shared": true,
	"model": true, "models": true, "entity": true, "entities": true,
	"dto": true, "dtos": true, "service": true, "services": true,
	"controller": true, "controllers": true, "repository": true,
	"repositories": true, "dao": true, "daos": true,
	"build": true, "dist": true, "target": true, "out": true,
	"output": true, "gen": true, "generated": true,
	"vendor": true, "node_modules": true, "deps": true,
	"dependencies": true, "third_party": true,
	"assets": true, "public": true, "static": true, "config": true,
	"configs": true, "scripts": true, "tools": true, "templates": true,
	"fixtures": true, "docs": true, "doc": true, "documentation": true,
	"examples": true, "samples": true, "demo": true,
}

// Metadata is the structured description extracted from one project.
type Metadata struct {
	Description   string
	Keywords      []string
	ReadmeExcerpt string
	TechTags      []string
	Structure     []string
	TypeNames     []string
}

// Extractor extracts metadata from project directories. The zero value is
// not usable; construct with NewExtractor.
type Extractor struct {
	tags *TagTable
}

// NewExtractor creates an extractor using the default technology-tag table.
func NewExtractor() *Extractor {
	return &Extractor{tags: DefaultTagTable()}
}

// Extract reads a project directory and returns its metadata. It never
// returns an error: unreadable inputs simply leave fields empty.
func (e *Extractor) Extract(path string) Metadata {
	var meta Metadata

	if m, ok := readManifest(path); ok {
		meta.Description = m.Description
		meta.Keywords = m.Keywords
	}
	meta.ReadmeExcerpt = readmeExcerpt(path)
	meta.TechTags = e.tags.Detect(path)
	meta.Structure = structureHints(path)
	meta.TypeNames = typeNames(path)

	return meta
}

// EmbeddingText builds the labeled blob fed to the embedding provider.
// Layout: name | description | keywords | readme | tech | structure | types.
func (m Metadata) EmbeddingText(name string) string {
	parts := []string{name}

	if m.Description != "" {
		parts = append(parts, m.Description)
	}
	if len(m.Keywords) > 0 {
		parts = append(parts, strings.Join(m.Keywords, ", "))
	}
	if m.ReadmeExcerpt != "" {
		parts = append(parts, m.ReadmeExcerpt)
	}
	if len(m.TechTags) > 0 {
		parts = append(parts, "Technologies: "+strings.Join(m.TechTags, ", "))
		if hints := domainHints(m.TechTags); len(hints) > 0 {
			parts = append(parts, "Type: "+strings.Join(hints, ", "))
		}
	}
	if len(m.Structure) > 0 {
		parts = append(parts, "Structure: "+strings.Join(m.Structure, ", "))
	}
	if len(m.TypeNames) > 0 {
		parts = append(parts, "Types: "+strings.Join(m.TypeNames, ", "))
	}

	return strings.Join(parts, " | ")
}

// domainHints derives coarse project-kind hints from detected tech tags,
// giving the embedding a little more to hold on to.
func domainHints(tags []string) []string {
	has := func(names ...string) bool {
		for _, t := range tags {
			for _, n := range names {
				if t == n {
					return true
				}
			}
		}
		return false
	}

	var hints []string
	backend := has("Go", "Rust", "Java", "Kotlin", "Scala", "Python", "Ruby", "PHP", "Elixir", "C#")
	frontend := has("Next.js", "Nuxt", "Vite", "Astro", "Svelte", "Angular", "Vue", "Tailwind")
	web := has("JavaScript", "TypeScript")

	if frontend || (web && !backend) {
		hints = append(hints, "frontend", "web", "UI")
	}
	if backend {
		hints = append(hints, "backend", "server", "API")
	}
	if has("Docker", "Kubernetes", "Terraform", "Pulumi") {
		hints = append(hints, "infrastructure", "devops")
	}
	return hints
}

// structureHints collects distinctive directory names under the project,
// skipping hidden, short, and generic names.
func structureHints(root string) []string {
	seen := make(map[string]bool)

	walkLimited(root, 6, func(path string, entry os.DirEntry) {
		if !entry.IsDir() {
			return
		}
		name := strings.ToLower(entry.Name())
		if len(name) < 4 || genericDirs[name] {
			return
		}
		seen[name] = true
	})

	hints := make([]string, 0, len(seen))
	for name := range seen {
		hints = append(hints, name)
	}
	sort.Strings(hints)
	if len(hints) > maxStructureHints {
		hints = hints[:maxStructureHints]
	}
	return hints
}

// walkLimited walks root to maxDepth, skipping hidden and dependency
// directories. Errors are ignored; this is discovery, not verification.
func walkLimited(root string, maxDepth int, fn func(path string, entry os.DirEntry)) {
	sep := string(filepath.Separator)
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == root {
			return nil
		}
		rel := strings.TrimPrefix(path, root+sep)
		depth := strings.Count(rel, sep) + 1
		name := d.Name()

		if d.IsDir() {
			if strings.HasPrefix(name, ".") || genericSkipDir(name) {
				return filepath.SkipDir
			}
			if depth >= maxDepth {
				fn(path, d)
				return filepath.SkipDir
			}
		}
		fn(path, d)
		return nil
	})
}

// genericSkipDir reports directories never worth descending into.
func genericSkipDir(name string) bool {
	switch name {
	case "node_modules", "vendor", "target", "dist", "build", "__pycache__", ".git":
		return true
	}
	return false
}
