package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/tvm/internal/platform"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the tvm version and host platform",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "tvm %s\n", versionString())

		info, err := platform.Detect(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "platform: %s\n", info.Describe())
		return nil
	},
}
