package metadata

import (
	"os"
	"path/filepath"
)

// Signature maps an observable file marker to a technology tag. Detection
// is purely declarative: a project gets the union of all matching tags.
type Signature struct {
	// File matches when a file of this exact name exists in the project
	// root. Empty means extension-only detection.
	File string

	// Ext matches when a file with this extension exists in the project
	// root or a common source directory. Empty means file-only detection.
	Ext string

	// Tag is the technology tag to emit.
	Tag string
}

// TagTable is a declarative technology-detection table, evaluated once per
// project.
type TagTable struct {
	signatures []Signature
}

// DefaultTagTable returns the built-in signature table covering the
// languages, frameworks, and infra markers we recognize.
func DefaultTagTable() *TagTable {
	return &TagTable{signatures: []Signature{
		// Systems
		{File: "Cargo.toml", Tag: "Rust"},
		{File: "CMakeLists.txt", Tag: "C++"},
		{File: "meson.build", Tag: "C"},
		{File: "build.zig", Tag: "Zig"},
		// JVM
		{File: "pom.xml", Tag: "Java"},
		{File: "build.gradle", Tag: "Java"},
		{File: "build.gradle.kts", Tag: "Kotlin"},
		{File: "build.sbt", Tag: "Scala"},
		{File: "project.clj", Tag: "Clojure"},
		// Web
		{File: "package.json", Tag: "JavaScript"},
		{File: "tsconfig.json", Tag: "TypeScript"},
		{File: "deno.json", Tag: "Deno"},
		{File: "bun.lockb", Tag: "Bun"},
		// Python
		{File: "pyproject.toml", Tag: "Python"},
		{File: "requirements.txt", Tag: "Python"},
		{File: "setup.py", Tag: "Python"},
		{File: "Pipfile", Tag: "Python"},
		// Go
		{File: "go.mod", Tag: "Go"},
		// Ruby / PHP / BEAM
		{File: "Gemfile", Tag: "Ruby"},
		{File: "composer.json", Tag: "PHP"},
		{File: "mix.exs", Tag: "Elixir"},
		{File: "rebar.config", Tag: "Erlang"},
		// Functional
		{File: "stack.yaml", Tag: "Haskell"},
		{File: "dune-project", Tag: "OCaml"},
		// Mobile
		{File: "Package.swift", Tag: "Swift"},
		{File: "Podfile", Tag: "iOS"},
		// Infra
		{File: "Dockerfile", Tag: "Docker"},
		{File: "docker-compose.yml", Tag: "Docker"},
		{File: "docker-compose.yaml", Tag: "Docker"},
		{File: "main.tf", Tag: "Terraform"},
		{File: "serverless.yml", Tag: "Serverless"},
		{File: "pulumi.yaml", Tag: "Pulumi"},
		// Frontend frameworks
		{File: "next.config.js", Tag: "Next.js"},
		{File: "next.config.mjs", Tag: "Next.js"},
		{File: "nuxt.config.ts", Tag: "Nuxt"},
		{File: "vite.config.ts", Tag: "Vite"},
		{File: "astro.config.mjs", Tag: "Astro"},
		{File: "svelte.config.js", Tag: "Svelte"},
		{File: "angular.json", Tag: "Angular"},
		{File: "tailwind.config.js", Tag: "Tailwind"},
		{File: "tailwind.config.ts", Tag: "Tailwind"},
		// Docs tooling
		{File: "mkdocs.yml", Tag: "MkDocs"},
		{File: "docusaurus.config.js", Tag: "Docusaurus"},
		// Build tools
		{File: "Makefile", Tag: "Make"},
		{File: "justfile", Tag: "Just"},
		{File: "Taskfile.yml", Tag: "Task"},
		// Extensions, as a fallback when no manifest gives it away
		{Ext: ".rs", Tag: "Rust"},
		{Ext: ".ts", Tag: "TypeScript"},
		{Ext: ".tsx", Tag: "TypeScript"},
		{Ext: ".js", Tag: "JavaScript"},
		{Ext: ".py", Tag: "Python"},
		{Ext: ".go", Tag: "Go"},
		{Ext: ".java", Tag: "Java"},
		{Ext: ".kt", Tag: "Kotlin"},
		{Ext: ".scala", Tag: "Scala"},
		{Ext: ".rb", Tag: "Ruby"},
		{Ext: ".php", Tag: "PHP"},
		{Ext: ".ex", Tag: "Elixir"},
		{Ext: ".hs", Tag: "Haskell"},
		{Ext: ".ml", Tag: "OCaml"},
		{Ext: ".swift", Tag: "Swift"},
		{Ext: ".cs", Tag: "C#"},
		{Ext: ".c", Tag: "C"},
		{Ext: ".cpp", Tag: "C++"},
		{Ext: ".zig", Tag: "Zig"},
		{Ext: ".lua", Tag: "Lua"},
		{Ext: ".tf", Tag: "Terraform"},
		{Ext: ".vue", Tag: "Vue"},
		{Ext: ".svelte", Tag: "Svelte"},
	}}
}

// sampledDirs are where extension detection looks, besides the root.
var sampledDirs = []string{"src", "lib", "app"}

// maxSampledEntries bounds how many directory entries extension detection
// inspects per directory.
const maxSampledEntries = 30

// Detect returns the union of tags whose signatures match the project,
// in table order, deduplicated.
func (t *TagTable) Detect(root string) []string {
	exts := sampleExtensions(root)

	var tags []string
	seen := make(map[string]bool)
	add := func(tag string) {
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	for _, sig := range t.signatures {
		switch {
		case sig.File != "":
			if _, err := os.Stat(filepath.Join(root, sig.File)); err == nil {
				add(sig.Tag)
			}
		case sig.Ext != "":
			if exts[sig.Ext] {
				add(sig.Tag)
			}
		}
	}
	return tags
}

// sampleExtensions gathers file extensions present in the root and common
// source directories.
func sampleExtensions(root string) map[string]bool {
	exts := make(map[string]bool)
	dirs := []string{root}
	for _, d := range sampledDirs {
		dirs = append(dirs, filepath.Join(root, d))
	}

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		if len(entries) > maxSampledEntries {
			entries = entries[:maxSampledEntries]
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if ext := filepath.Ext(entry.Name()); ext != "" {
				exts[ext] = true
			}
		}
	}
	return exts
}
