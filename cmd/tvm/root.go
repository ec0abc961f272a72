// Command tvm manages installed versions of the Tidal binaries: install,
// switch, update, uninstall, and self-management of the tvm executable.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/tvm/internal/notify"
	"github.com/ZebulonRouseFrantzich/tvm/internal/platform"
	"github.com/ZebulonRouseFrantzich/tvm/internal/registry"
	"github.com/ZebulonRouseFrantzich/tvm/internal/version"
	"github.com/ZebulonRouseFrantzich/tvm/internal/workdir"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"

	quiet   bool
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "tvm",
		Short: "Tidal Version Manager",
		Long: `tvm installs and manages versions of the Tidal binaries.

Versions are selected by channel ("stable", "latest", or any release tag)
or pinned to an exact semantic version. Installed versions live under
$HOME/.tvm and the active one is exposed on PATH via $HOME/.tvm/bin.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.WarnLevel)
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(currentCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(selfCmd)
}

// Execute runs the CLI. Called by main.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// newManager builds the shared dependency graph for version commands.
func newManager() (*version.Manager, workdir.Dir, *notify.Notifier, error) {
	dirs, err := workdir.Resolve()
	if err != nil {
		return nil, workdir.Dir{}, nil, err
	}

	notifier := notify.New(quiet)
	return version.NewManager(dirs, newRegistryClient(), notifier), dirs, notifier, nil
}

// newRegistryClient picks up GITHUB_TOKEN for higher API rate limits.
func newRegistryClient() *registry.Client {
	var opts []registry.Option
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		opts = append(opts, registry.WithToken(token))
	}
	return registry.NewClient(opts...)
}

// hostTriple detects the host target triple unless an override was given.
func hostTriple(ctx context.Context, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	info, err := platform.Detect(ctx)
	if err != nil {
		return "", err
	}
	return info.Triple, nil
}
