package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Errors for registry operations.
var (
	ErrNotFound = errors.New("project not found")

	// ErrRegistryCorrupted indicates registry.json could not be parsed.
	// Recover with a full refresh, which rebuilds it from scratch.
	ErrRegistryCorrupted = errors.New("registry file corrupted (run a refresh to rebuild)")
)

// Sort orders for List.
const (
	SortName     = "name"
	SortRecent   = "recent"
	SortFrecency = "frecency"
)

// registryData is the persisted registry structure.
type registryData struct {
	Version  int                 `json:"version"`
	Projects map[string]*Project `json:"projects"` // key: canonical path
}

// Registry is the JSON-backed project catalog. All mutating methods
// persist atomically before returning.
type Registry struct {
	mu       sync.RWMutex
	filePath string
	data     *registryData
}

// OpenRegistry loads the registry at filePath, creating the parent
// directory if needed. A missing file yields an empty registry.
func OpenRegistry(filePath string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	r := &Registry{
		filePath: filePath,
		data: &registryData{
			Version:  1,
			Projects: make(map[string]*Project),
		},
	}
	if err := r.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return r, nil
}

func (r *Registry) load() error {
	raw, err := os.ReadFile(r.filePath)
	if err != nil {
		return err
	}

	var rd registryData
	if err := json.Unmarshal(raw, &rd); err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryCorrupted, err)
	}
	if rd.Projects == nil {
		rd.Projects = make(map[string]*Project)
	}
	r.data = &rd
	return nil
}

// save persists the registry atomically. Callers must hold the write lock.
func (r *Registry) save() error {
	raw, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling registry: %w", err)
	}

	tmpPath := r.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := os.Rename(tmpPath, r.filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing registry: %w", err)
	}
	return nil
}

// Upsert inserts or updates projects by path. Access statistics and the
// embedding flag of existing entries survive the update, so re-scanning is
// idempotent with respect to usage history. Returns the number of projects
// that were new.
func (r *Registry) Upsert(projects ...Project) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, p := range projects {
		if existing, ok := r.data.Projects[p.Path]; ok {
			p.LastAccessed = existing.LastAccessed
			p.AccessCount = existing.AccessCount
			if !p.HasEmbedding {
				p.HasEmbedding = existing.HasEmbedding
			}
		} else {
			added++
		}
		entry := p
		r.data.Projects[p.Path] = &entry
	}
	return added, r.save()
}

// Get returns the project at the canonical path.
func (r *Registry) Get(path string) (Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.data.Projects[path]
	if !ok {
		return Project{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return *p, nil
}

// All returns every indexed project in unspecified order.
func (r *Registry) All() []Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Project, 0, len(r.data.Projects))
	for _, p := range r.data.Projects {
		out = append(out, *p)
	}
	return out
}

// Len returns the number of indexed projects.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data.Projects)
}

// List returns projects ordered by the given sort key. limit <= 0 means
// no limit.
func (r *Registry) List(sortBy string, limit int) []Project {
	projects := r.All()
	now := time.Now()

	switch sortBy {
	case SortRecent:
		sort.Slice(projects, func(i, j int) bool {
			a, b := projects[i].LastAccessed, projects[j].LastAccessed
			switch {
			case a == nil && b == nil:
				return projects[i].Path < projects[j].Path
			case a == nil:
				return false
			case b == nil:
				return true
			case !a.Equal(*b):
				return a.After(*b)
			default:
				return projects[i].Path < projects[j].Path
			}
		})
	case SortFrecency:
		sort.Slice(projects, func(i, j int) bool {
			fi, fj := projects[i].Frecency(now), projects[j].Frecency(now)
			if fi != fj {
				return fi > fj
			}
			return projects[i].Path < projects[j].Path
		})
	default:
		sort.Slice(projects, func(i, j int) bool {
			if projects[i].Name != projects[j].Name {
				return projects[i].Name < projects[j].Name
			}
			return projects[i].Path < projects[j].Path
		})
	}

	if limit > 0 && len(projects) > limit {
		projects = projects[:limit]
	}
	return projects
}

// Remove deletes the project at path. Returns ErrNotFound when absent.
func (r *Registry) Remove(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data.Projects[path]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	delete(r.data.Projects, path)
	return r.save()
}

// RemoveByPrefix deletes every project whose path equals prefix or lies
// under it, returning the removed paths.
func (r *Registry) RemoveByPrefix(prefix string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sep := string(filepath.Separator)
	var removed []string
	for path := range r.data.Projects {
		if path == prefix || strings.HasPrefix(path, prefix+sep) {
			delete(r.data.Projects, path)
			removed = append(removed, path)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	sort.Strings(removed)
	return removed, r.save()
}

// Prune removes projects whose directory no longer exists, returning the
// removed paths.
func (r *Registry) Prune() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for path := range r.data.Projects {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			continue
		}
		delete(r.data.Projects, path)
		removed = append(removed, path)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	sort.Strings(removed)
	return removed, r.save()
}

// RecordAccess bumps the access statistics for path. The registry is
// re-read from disk first so that concurrent shells updating different
// projects do not clobber each other's bumps.
func (r *Registry) RecordAccess(path string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil && !os.IsNotExist(err) {
		return err
	}

	p, ok := r.data.Projects[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	p.AccessCount++
	t := now
	p.LastAccessed = &t
	return r.save()
}
