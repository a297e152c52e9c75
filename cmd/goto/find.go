package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/goto/internal/resolver"
)

// postCmdPrefix is the directive a shell wrapper greps off stderr to run
// an editor after cd'ing.
const postCmdPrefix = "__GOTO_POST_CMD__:"

func joinQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// resolveAndEmit resolves the query and performs the stdout/stderr dance.
// cdOnly suppresses the post-command directive for this invocation.
func resolveAndEmit(cmd *cobra.Command, a *app, query string, cdOnly bool) error {
	res, err := a.resolveQuery(cmd, query)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Path)
	if res.PostCommand != "" && !cdOnly {
		fmt.Fprintln(cmd.ErrOrStderr(), postCmdPrefix+res.PostCommand)
	}
	return nil
}

func newFindCmd(a *app) *cobra.Command {
	var all bool
	var limit int
	var cdOnly bool

	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Find a project by fuzzy or semantic match",
		Long: `Find resolves a query against the indexed projects. Without flags it
prints the single best match; with --all it lists every candidate that
clears the match threshold, best first.

The query "-" returns the most recently visited project.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := joinQuery(args)
			if !all {
				return resolveAndEmit(cmd, a, query, cdOnly)
			}
			return findAll(cmd, a, query, limit)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "list every match above the threshold")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "cap the number of matches listed (with -a)")
	cmd.Flags().BoolVarP(&cdOnly, "cd-only", "c", false, "just cd, skip the post command")
	return cmd
}

func findAll(cmd *cobra.Command, a *app, query string, limit int) error {
	res, err := a.resolver()
	if err != nil {
		return err
	}
	matches, err := res.Rank(cmd.Context(), query)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no matching project found: %q", query)
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := cmd.OutOrStdout()
	for _, m := range matches {
		fmt.Fprintf(out, "%5.1f  %s\n", m.Score, m.Project.Path)
	}
	return nil
}

func (a *app) resolveQuery(cmd *cobra.Command, query string) (resolver.Result, error) {
	r, err := a.resolver()
	if err != nil {
		return resolver.Result{}, err
	}
	res, err := r.Resolve(cmd.Context(), query)
	if err != nil {
		return resolver.Result{}, err
	}
	a.logger.Debug("resolved",
		zap.String("query", query),
		zap.String("path", res.Path),
		zap.Float64("score", res.Score))
	return res, nil
}
