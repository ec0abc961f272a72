package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
)

var switchCmd = &cobra.Command{
	Use:   "switch [selector]",
	Short: "Switch the active version",
	Long: `Switch activates an already-installed version: its binaries are copied
into the bin directory and the settings file is updated. Nothing is
downloaded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, notifier, err := newManager()
		if err != nil {
			return err
		}

		var sel selector.Selector
		if len(args) == 1 {
			sel, err = selector.Parse(args[0])
			if err != nil {
				return err
			}
		} else {
			cfg, err := mgr.Settings()
			if err != nil {
				return err
			}
			sel = cfg.Active
			if sel.IsUnset() {
				notifier.Help("run 'tvm list' to see installed versions")
				return fmt.Errorf("no version provided")
			}
		}

		return mgr.Switch(sel)
	},
}
