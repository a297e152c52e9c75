package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.store()
			if err != nil {
				return err
			}

			projects := st.Registry().All()
			embedded := 0
			visited := 0
			var accesses int64
			for _, p := range projects {
				if p.HasEmbedding {
					embedded++
				}
				if p.LastAccessed != nil {
					visited++
				}
				accesses += p.AccessCount
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "projects:     %d\n", len(projects))
			fmt.Fprintf(out, "embedded:     %d\n", embedded)
			fmt.Fprintf(out, "visited:      %d\n", visited)
			fmt.Fprintf(out, "navigations:  %d\n", accesses)

			top := projects
			sort.Slice(top, func(i, j int) bool {
				if top[i].AccessCount != top[j].AccessCount {
					return top[i].AccessCount > top[j].AccessCount
				}
				return top[i].Path < top[j].Path
			})
			if len(top) > 5 {
				top = top[:5]
			}
			if len(top) > 0 && top[0].AccessCount > 0 {
				fmt.Fprintln(out, "most visited:")
				now := time.Now()
				for _, p := range top {
					if p.AccessCount == 0 {
						break
					}
					fmt.Fprintf(out, "  %4dx  %s (frecency %.0f)\n",
						p.AccessCount, p.Name, p.Frecency(now))
				}
			}
			return nil
		},
	}
	return cmd
}
