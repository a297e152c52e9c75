package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/goto/internal/metadata"
	"github.com/fyrsmithlabs/goto/internal/scanner"
	"github.com/fyrsmithlabs/goto/internal/store"
)

// extractWorkers bounds concurrent metadata extraction.
const extractWorkers = 4

func newScanCmd(a *app, name string) *cobra.Command {
	var force bool
	var watch bool

	cmd := &cobra.Command{
		Use:   name,
		Short: "Discover and index projects under the scan paths",
		Long: `Scan walks the configured scan paths, extracts metadata for each
discovered project, and stores it. Embeddings are generated for projects
that lack one; --force regenerates metadata and embeddings for everything.

With --watch the command keeps running and re-scans when a scan path
changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runIndex(cmd.Context(), a, force); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			sc := scanner.New(a.cfg, a.logger)
			return sc.Watch(cmd.Context(), func(ctx context.Context) error {
				return runIndex(ctx, a, false)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-extract metadata and embeddings for all projects")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and re-index on changes")
	return cmd
}

// runIndex is the scan pipeline: discover, extract, persist, embed.
func runIndex(ctx context.Context, a *app, force bool) error {
	st, err := a.store()
	if err != nil {
		return err
	}

	sc := scanner.New(a.cfg, a.logger)
	candidates, err := sc.Scan(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("scan complete", zap.Int("discovered", len(candidates)))

	projects := extractAll(a, candidates)
	added, err := st.Registry().Upsert(projects...)
	if err != nil {
		return err
	}
	a.logger.Info("registry updated",
		zap.Int("indexed", len(projects)),
		zap.Int("new", added))

	if err := embedProjects(ctx, a, st, projects, force); err != nil {
		// Lexical matching still works without vectors.
		a.logger.Warn("embedding pass incomplete", zap.Error(err))
	}
	return nil
}

// extractAll runs metadata extraction with bounded parallelism.
func extractAll(a *app, candidates []scanner.Candidate) []store.Project {
	extractor := metadata.NewExtractor()
	projects := make([]store.Project, len(candidates))

	var wg sync.WaitGroup
	sem := make(chan struct{}, extractWorkers)
	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c scanner.Candidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			meta := extractor.Extract(c.Path)
			projects[i] = store.Project{
				Path:            c.Path,
				Name:            c.Name,
				Description:     meta.Description,
				DescriptionText: meta.EmbeddingText(c.Name),
				TechTags:        meta.TechTags,
				IndexedAt:       time.Now(),
			}
		}(i, c)
	}
	wg.Wait()
	return projects
}

// embedProjects generates vectors for projects that need one and flags
// them in the registry.
func embedProjects(ctx context.Context, a *app, st *store.Store, projects []store.Project, force bool) error {
	lazy := a.embedder()
	if lazy == nil {
		a.logger.Debug("embeddings disabled, skipping")
		return nil
	}

	var paths, pending []string
	for _, p := range projects {
		if !force {
			if existing, err := st.Registry().Get(p.Path); err == nil && existing.HasEmbedding {
				continue
			}
		}
		paths = append(paths, p.Path)
		pending = append(pending, p.DescriptionText)
	}
	if len(paths) == 0 {
		return nil
	}

	vecs, err := lazy.EmbedDocuments(ctx, pending)
	if err != nil {
		return fmt.Errorf("generating embeddings: %w", err)
	}
	if len(vecs) != len(paths) {
		return fmt.Errorf("provider returned %d vectors for %d texts", len(vecs), len(paths))
	}

	index, err := st.Vectors()
	if err != nil {
		return err
	}
	if err := index.SetBatch(ctx, paths, pending, vecs); err != nil {
		return err
	}

	flagged := make([]store.Project, 0, len(paths))
	for _, path := range paths {
		if p, err := st.Registry().Get(path); err == nil {
			p.HasEmbedding = true
			flagged = append(flagged, p)
		}
	}
	if _, err := st.Registry().Upsert(flagged...); err != nil {
		return err
	}

	a.logger.Info("embeddings updated", zap.Int("embedded", len(paths)))
	return nil
}
