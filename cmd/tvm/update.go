package main

import (
	"github.com/spf13/cobra"
)

var updateTarget string

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the active channel to its newest release",
	Long: `Update re-resolves the active channel against the registry and downloads
only the binaries that changed. Pinned versions never update; switch to a
channel first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, _, err := newManager()
		if err != nil {
			return err
		}

		triple, err := hostTriple(cmd.Context(), updateTarget)
		if err != nil {
			return err
		}

		return mgr.Update(cmd.Context(), triple)
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateTarget, "target", "", "override the target triple")
}
