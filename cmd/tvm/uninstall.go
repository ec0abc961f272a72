package main

import (
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <selector>",
	Short: "Remove an installed version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, _, err := newManager()
		if err != nil {
			return err
		}

		sel, err := selector.Parse(args[0])
		if err != nil {
			return err
		}

		return mgr.Uninstall(sel)
	},
}
