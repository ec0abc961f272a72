package main

import (
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
	"github.com/ZebulonRouseFrantzich/tvm/internal/version"
)

var installTarget string

var installCmd = &cobra.Command{
	Use:   "install [selector]",
	Short: "Install a version and make it active",
	Long: `Install downloads the Tidal binaries for a channel or pinned version and
verifies them. The active selection is unchanged; use switch to activate
the result. Without a selector the active one is reinstalled, or "stable"
when nothing is active yet.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, _, err := newManager()
		if err != nil {
			return err
		}

		sel, err := installSelector(mgr, args)
		if err != nil {
			return err
		}

		triple, err := hostTriple(cmd.Context(), installTarget)
		if err != nil {
			return err
		}

		return mgr.Install(cmd.Context(), sel, triple)
	},
}

func init() {
	installCmd.Flags().StringVar(&installTarget, "target", "", "override the target triple (e.g. x86_64-unknown-linux-musl)")
}

// installSelector picks the selector to install: the argument when given,
// otherwise the active selector, otherwise the stable channel.
func installSelector(mgr *version.Manager, args []string) (selector.Selector, error) {
	if len(args) == 1 {
		return selector.Parse(args[0])
	}

	cfg, err := mgr.Settings()
	if err != nil {
		return selector.Selector{}, err
	}
	if !cfg.Active.IsUnset() {
		return cfg.Active, nil
	}

	return selector.Channel(selector.Stable), nil
}
