// Command goto resolves short queries to project directories for a shell
// cd wrapper.
//
// Output protocol: on success the resolved absolute path is the only thing
// written to stdout, as a single line. Logs, listings prompted by other
// subcommands, and the optional __GOTO_POST_CMD__ directive go to stderr
// or are themselves the subcommand's own stdout payload. On failure stdout
// stays empty and the process exits nonzero.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/goto/internal/config"
	"github.com/fyrsmithlabs/goto/internal/embeddings"
	"github.com/fyrsmithlabs/goto/internal/logging"
	"github.com/fyrsmithlabs/goto/internal/resolver"
	"github.com/fyrsmithlabs/goto/internal/store"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "goto: %v\n", err)
		return 1
	}
	return 0
}

// app holds per-invocation state, constructed once in the persistent
// pre-run and passed down explicitly.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	st *store.Store
}

// store opens the project store on first use.
func (a *app) store() (*store.Store, error) {
	if a.st != nil {
		return a.st, nil
	}
	st, err := store.Open(a.cfg.RegistryPath(), a.cfg.VectorDir())
	if err != nil {
		return nil, err
	}
	a.st = st
	return st, nil
}

// embedder returns the lazily constructed embedding provider, or nil when
// embeddings are disabled.
func (a *app) embedder() *embeddings.Lazy {
	if a.cfg.Embedding.Disabled {
		return nil
	}
	embCfg := a.cfg.Embedding
	if embCfg.CacheDir == "" {
		embCfg.CacheDir = a.cfg.ModelCacheDir()
	}
	return embeddings.NewLazy(func() (embeddings.Provider, error) {
		return embeddings.NewProvider(embCfg)
	})
}

func (a *app) resolver() (*resolver.Resolver, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}
	return resolver.New(a.cfg, st, a.embedder(), a.logger), nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var configPath string
	var verbose bool
	var cdOnly bool

	root := &cobra.Command{
		Use:   "goto [query]",
		Short: "Jump to project directories by fuzzy or semantic match",
		Long: `goto indexes the projects under your scan paths and resolves short
queries to project directories. It is meant to be wrapped by a shell
function that cd's to the single path printed on stdout.

Examples:
  goto docs              # jump to the best match for "docs"
  goto find "api" --all  # show every match with scores
  goto -                 # jump to the most recently visited project
  goto scan              # index projects under the configured scan paths`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level := cfg.LogLevel
			if verbose {
				level = "debug"
			}
			logger, err := logging.New(logging.Config{Level: level})
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return resolveAndEmit(cmd, a, joinQuery(args), cdOnly)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: config.yaml in the config directory)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.Flags().BoolVarP(&cdOnly, "cd-only", "c", false, "just cd, skip the post command")

	root.AddCommand(
		newFindCmd(a),
		newScanCmd(a, "scan"),
		newScanCmd(a, "update"),
		newListCmd(a),
		newRecentCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newRefreshCmd(a),
		newConfigCmd(a),
		newStatsCmd(a),
	)
	return root
}
