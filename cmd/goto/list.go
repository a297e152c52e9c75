package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/goto/internal/gitinfo"
	"github.com/fyrsmithlabs/goto/internal/store"
)

func newListCmd(a *app) *cobra.Command {
	var sortBy string
	var limit int
	var withGit bool
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.store()
			if err != nil {
				return err
			}

			switch sortBy {
			case store.SortName, store.SortRecent, store.SortFrecency:
			default:
				return fmt.Errorf("unknown sort %q (name, recent, frecency)", sortBy)
			}
			if all {
				limit = 0
			}
			projects := st.Registry().List(sortBy, limit)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			for _, p := range projects {
				line := fmt.Sprintf("%s\t%s", p.Name, p.Path)
				if len(p.TechTags) > 0 {
					line += "\t" + p.TechTags[0]
				} else {
					line += "\t"
				}
				if withGit {
					if info, ok := gitinfo.Read(p.Path); ok {
						branch := info.Branch
						if info.Dirty {
							branch += "*"
						}
						line += "\t" + branch
					} else {
						line += "\t"
					}
				}
				fmt.Fprintln(w, line)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", store.SortName, "sort order: name, recent, frecency")
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most N projects")
	cmd.Flags().BoolVar(&withGit, "git", false, "show git branch and dirty state")
	cmd.Flags().BoolVar(&all, "all", false, "ignore --limit and show every project")
	return cmd
}

func newRecentCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently visited projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.store()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			now := time.Now()
			for _, p := range st.Registry().List(store.SortRecent, limit) {
				if p.LastAccessed == nil {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Path, humanAge(now.Sub(*p.LastAccessed)))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "show at most N projects")
	return cmd
}

func humanAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
