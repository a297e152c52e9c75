package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := a.cfg

			fmt.Fprintf(out, "config dir:      %s\n", cfg.ConfigDir())
			fmt.Fprintf(out, "data dir:        %s\n", cfg.DataDir())
			fmt.Fprintf(out, "max depth:       %d\n", cfg.MaxDepth)
			fmt.Fprintf(out, "post command:    %s\n", orNone(cfg.PostCommand))
			fmt.Fprintf(out, "discovery:       %t\n", cfg.DiscoveryAssist)
			fmt.Fprintf(out, "log level:       %s\n", cfg.LogLevel)
			fmt.Fprintf(out, "embedding:       provider=%s model=%s disabled=%t\n",
				cfg.Embedding.Provider, cfg.Embedding.Model, cfg.Embedding.Disabled)
			if cfg.Embedding.BaseURL != "" {
				fmt.Fprintf(out, "embedding url:   %s\n", cfg.Embedding.BaseURL)
			}

			if len(cfg.ScanPaths) == 0 {
				fmt.Fprintln(out, "scan paths:      (none, add one with `goto add <path>`)")
				return nil
			}
			fmt.Fprintln(out, "scan paths:")
			for _, sp := range cfg.ScanPaths {
				mode := "recursive"
				if !sp.Recursive {
					mode = "direct children"
				}
				fmt.Fprintf(out, "  %s (%s)\n", sp.Path, mode)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a config file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", a.cfg.ConfigDir())
			return nil
		},
	})
	return cmd
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
