package store

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

// collectionName is the single chromem collection holding project vectors.
const collectionName = "projects"

// Hit is one semantic match from the vector index.
type Hit struct {
	// Path is the project's canonical path (the document ID).
	Path string

	// Score is the cosine similarity mapped onto 0..100.
	Score float64
}

// VectorIndex stores one embedding per project in an embedded, persistent
// chromem-go database. Documents are keyed by canonical project path.
type VectorIndex struct {
	db  *chromem.DB
	col *chromem.Collection
}

// OpenVectors opens or creates the vector index in dir.
func OpenVectors(dir string) (*VectorIndex, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector index: %w", err)
	}

	// The embedding func is never invoked: every document arrives with a
	// precomputed vector.
	col, err := db.GetOrCreateCollection(collectionName, nil, noEmbedding)
	if err != nil {
		return nil, fmt.Errorf("opening collection: %w", err)
	}
	return &VectorIndex{db: db, col: col}, nil
}

func noEmbedding(_ context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("no embedding func configured (document %q arrived without a vector)", truncate(text, 40))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Set stores (or replaces) the embedding for a project.
func (v *VectorIndex) Set(ctx context.Context, path, content string, embedding []float32) error {
	doc := chromem.Document{
		ID:        path,
		Content:   content,
		Embedding: embedding,
	}
	if err := v.col.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return fmt.Errorf("storing embedding for %s: %w", path, err)
	}
	return nil
}

// SetBatch stores embeddings for multiple projects at once.
func (v *VectorIndex) SetBatch(ctx context.Context, paths, contents []string, embeddings [][]float32) error {
	if len(paths) != len(embeddings) || len(paths) != len(contents) {
		return fmt.Errorf("mismatched batch lengths: %d paths, %d contents, %d embeddings",
			len(paths), len(contents), len(embeddings))
	}
	if len(paths) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(paths))
	for i := range paths {
		docs[i] = chromem.Document{
			ID:        paths[i],
			Content:   contents[i],
			Embedding: embeddings[i],
		}
	}
	if err := v.col.AddDocuments(ctx, docs, 4); err != nil {
		return fmt.Errorf("storing embeddings: %w", err)
	}
	return nil
}

// Remove deletes the vectors for the given project paths. Unknown paths
// are ignored.
func (v *VectorIndex) Remove(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := v.col.Delete(ctx, nil, nil, paths...); err != nil {
		return fmt.Errorf("removing embeddings: %w", err)
	}
	return nil
}

// Count returns the number of stored vectors.
func (v *VectorIndex) Count() int {
	return v.col.Count()
}

// Similarities ranks all stored projects against the query embedding and
// returns up to k hits, best first. An empty index yields no hits.
func (v *VectorIndex) Similarities(ctx context.Context, query []float32, k int) ([]Hit, error) {
	count := v.col.Count()
	if count == 0 {
		return nil, nil
	}
	if k <= 0 || k > count {
		k = count
	}

	results, err := v.col.QueryEmbedding(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying vector index: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, res := range results {
		score := float64(res.Similarity) * 100
		if score < 0 {
			score = 0
		}
		hits = append(hits, Hit{Path: res.ID, Score: score})
	}
	return hits, nil
}
