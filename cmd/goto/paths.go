package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/goto/internal/store"
)

func newAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Add a scan path and index it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canonical, err := a.cfg.AddScanPath(args[0])
			if err != nil {
				return err
			}
			if err := a.cfg.Save(); err != nil {
				return err
			}
			a.logger.Info("scan path added", zap.String("path", canonical))
			return runIndex(cmd.Context(), a, false)
		},
	}
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <path>",
		Short: "Remove a scan path and drop its projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canonical, found := a.cfg.RemoveScanPath(args[0])
			if !found {
				return fmt.Errorf("not a configured scan path: %s", args[0])
			}
			if err := a.cfg.Save(); err != nil {
				return err
			}

			st, err := a.store()
			if err != nil {
				return err
			}
			removed, err := st.RemoveByPrefix(cmd.Context(), canonical)
			if err != nil {
				return err
			}
			a.logger.Info("scan path removed",
				zap.String("path", canonical),
				zap.Int("projects_dropped", len(removed)))
			return nil
		},
	}
	return cmd
}

func newRefreshCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Prune vanished projects and rebuild the index",
		Long: `Refresh drops projects whose directories no longer exist, then runs a
forced re-scan: metadata and embeddings are regenerated for every
project. Use it to recover from a corrupted registry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.store()
			if errors.Is(err, store.ErrRegistryCorrupted) {
				a.logger.Warn("registry corrupted, rebuilding from scratch")
				if rmErr := os.Remove(a.cfg.RegistryPath()); rmErr != nil {
					return rmErr
				}
				st, err = a.store()
			}
			if err != nil {
				return err
			}
			pruned, err := st.Prune(cmd.Context())
			if err != nil {
				return err
			}
			if len(pruned) > 0 {
				a.logger.Info("pruned vanished projects", zap.Int("count", len(pruned)))
			}
			return runIndex(cmd.Context(), a, true)
		},
	}
	return cmd
}
