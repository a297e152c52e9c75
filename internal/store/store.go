package store

import (
	"context"
	"sync"
	"time"
)

// Store ties the project registry to the vector index and keeps the two
// consistent on removals. The vector index is opened lazily: commands that
// never touch embeddings skip loading it entirely.
type Store struct {
	registry *Registry

	vectorDir   string
	vectorsOnce sync.Once
	vectors     *VectorIndex
	vectorsErr  error
}

// Open opens the registry at registryPath; the vector index in vectorDir
// is opened on first use.
func Open(registryPath, vectorDir string) (*Store, error) {
	reg, err := OpenRegistry(registryPath)
	if err != nil {
		return nil, err
	}
	return &Store{registry: reg, vectorDir: vectorDir}, nil
}

// Registry exposes the project catalog.
func (s *Store) Registry() *Registry {
	return s.registry
}

// Vectors opens the vector index on first call and returns it.
func (s *Store) Vectors() (*VectorIndex, error) {
	s.vectorsOnce.Do(func() {
		s.vectors, s.vectorsErr = OpenVectors(s.vectorDir)
	})
	return s.vectors, s.vectorsErr
}

// Remove deletes a project from the registry and drops its vector.
func (s *Store) Remove(ctx context.Context, path string) error {
	if err := s.registry.Remove(path); err != nil {
		return err
	}
	return s.removeVectors(ctx, path)
}

// RemoveByPrefix deletes every project under prefix from the registry and
// the vector index, returning the removed paths.
func (s *Store) RemoveByPrefix(ctx context.Context, prefix string) ([]string, error) {
	removed, err := s.registry.RemoveByPrefix(prefix)
	if err != nil || len(removed) == 0 {
		return removed, err
	}
	return removed, s.removeVectors(ctx, removed...)
}

// Prune drops projects whose directories vanished, in both artifacts.
func (s *Store) Prune(ctx context.Context) ([]string, error) {
	removed, err := s.registry.Prune()
	if err != nil || len(removed) == 0 {
		return removed, err
	}
	return removed, s.removeVectors(ctx, removed...)
}

func (s *Store) removeVectors(ctx context.Context, paths ...string) error {
	vec, err := s.Vectors()
	if err != nil {
		// The registry removal already succeeded; a missing or broken
		// vector index self-heals on the next scan.
		return nil
	}
	return vec.Remove(ctx, paths...)
}

// RecordAccess bumps access statistics after a successful navigation.
func (s *Store) RecordAccess(path string, now time.Time) error {
	return s.registry.RecordAccess(path, now)
}
