package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
)

var listCmd = &cobra.Command{
	Use:   "list [selector]",
	Short: "List installed versions",
	Long: `List shows every installed version with the active one marked. With a
selector it lists that version's individual binaries instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, notifier, err := newManager()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			sel, err := selector.Parse(args[0])
			if err != nil {
				return err
			}

			man, err := mgr.Artifacts(sel)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BINARY\tVERSION")
			for _, a := range man.Artifacts {
				fmt.Fprintf(w, "%s\t%s\n", a.Name, a.Version)
			}
			return w.Flush()
		}

		entries, err := mgr.List()
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			notifier.Warn("no versions installed")
			notifier.Help("run 'tvm install stable' to install the latest release")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "\tSELECTOR\tVERSION")
		for _, e := range entries {
			marker := " "
			if e.Active {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", marker, e.Selector.String(), e.Version)
		}
		return w.Flush()
	},
}
