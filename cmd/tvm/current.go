package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the active version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, notifier, err := newManager()
		if err != nil {
			return err
		}

		cfg, err := mgr.Settings()
		if err != nil {
			return err
		}

		if cfg.Active.IsUnset() {
			notifier.Warn("no active version")
			notifier.Help("run 'tvm install stable' to install the latest release")
			return nil
		}

		if cfg.Active.IsChannel() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", cfg.Version, cfg.Active.String())
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), cfg.Version)
		return nil
	},
}
