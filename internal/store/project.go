// Package store persists the indexed project catalog.
//
// Two artifacts live side by side in the data directory: registry.json,
// the authoritative record of every indexed project, and a chromem-go
// vector index holding one embedding per project. The registry is always
// usable on its own; vectors are an accelerant, not a dependency.
package store

import (
	"math"
	"time"
)

// frecencyHalfLifeHours controls how fast access recency decays. A project
// accessed 72 hours ago contributes half the recency weight of one
// accessed just now.
const frecencyHalfLifeHours = 72.0

// Project is one indexed project directory.
type Project struct {
	// Path is the canonical absolute path. It is the primary key.
	Path string `json:"path"`

	// Name is the directory base name.
	Name string `json:"name"`

	// Description summarizes the project, from its manifest or README.
	Description string `json:"description,omitempty"`

	// DescriptionText is the full labeled metadata blob: description,
	// keywords, README excerpt, technologies, structure and type names.
	// It is both the embedding input and the corpus the metadata boost
	// searches.
	DescriptionText string `json:"description_text,omitempty"`

	// TechTags are detected technologies, e.g. "Rust", "Docker".
	TechTags []string `json:"tech_tags,omitempty"`

	// HasEmbedding reports whether a vector exists for this project.
	HasEmbedding bool `json:"has_embedding,omitempty"`

	// LastAccessed is the time of the most recent successful navigation,
	// nil for never-visited projects.
	LastAccessed *time.Time `json:"last_accessed,omitempty"`

	// AccessCount is the number of successful navigations.
	AccessCount int64 `json:"access_count,omitempty"`

	// IndexedAt is when the project was last written by a scan.
	IndexedAt time.Time `json:"indexed_at"`
}

// Frecency scores how habitually this project is visited, on a 0..100-ish
// scale: exponential decay of recency times log-scaled access count.
// Never-visited projects score zero.
func (p Project) Frecency(now time.Time) float64 {
	if p.LastAccessed == nil || p.AccessCount <= 0 {
		return 0
	}
	hours := now.Sub(*p.LastAccessed).Hours()
	if hours < 0 {
		hours = 0
	}
	recency := math.Pow(0.5, hours/frecencyHalfLifeHours)
	return recency * math.Log(float64(p.AccessCount)+1) * 100
}
