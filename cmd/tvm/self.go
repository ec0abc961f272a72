package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ZebulonRouseFrantzich/tvm/internal/artifact"
	"github.com/ZebulonRouseFrantzich/tvm/internal/notify"
	"github.com/ZebulonRouseFrantzich/tvm/internal/selfupdate"
	"github.com/ZebulonRouseFrantzich/tvm/internal/settings"
	"github.com/ZebulonRouseFrantzich/tvm/internal/workdir"
)

var selfUninstallYes bool

var selfCmd = &cobra.Command{
	Use:   "self",
	Short: "Manage the tvm installation itself",
}

var selfInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install tvm into its home directory",
	Long: `Self install copies the running executable into the home directory's bin,
writes the sourceable env file, and creates an empty settings file. It
refuses to overwrite an existing installation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dirs, err := workdir.Resolve()
		if err != nil {
			return err
		}
		notifier := notify.New(quiet)

		if _, err := os.Stat(dirs.ManagerPath()); err == nil {
			return fmt.Errorf("tvm is already installed at %s; run 'tvm self update' to update it", dirs.ManagerPath())
		}

		if err := dirs.Init(); err != nil {
			return err
		}

		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locate running executable: %w", err)
		}
		if err := artifact.ReplaceFile(exe, dirs.ManagerPath()); err != nil {
			return err
		}
		if err := artifact.SetExecutable(dirs.ManagerPath()); err != nil {
			return err
		}

		if err := dirs.WriteEnvFile(); err != nil {
			return err
		}

		if _, err := os.Stat(dirs.SettingsPath()); os.IsNotExist(err) {
			cfg, err := settings.Open(dirs.SettingsPath())
			if err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
		}

		notifier.Done("installed tvm to %s", dirs.ManagerPath())
		notifier.Help("add 'source %s' to your shell profile", dirs.EnvFilePath())
		return nil
	},
}

var selfUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove tvm and every installed version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dirs, err := workdir.Resolve()
		if err != nil {
			return err
		}
		notifier := notify.New(quiet)

		if !selfUninstallYes {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("refusing to uninstall without confirmation; pass --yes")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "remove %s and every installed version? [y/N] ", dirs.Root())
			answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read confirmation: %w", err)
			}
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				notifier.Info("aborted")
				return nil
			}
		}

		if err := os.RemoveAll(dirs.Root()); err != nil {
			return fmt.Errorf("remove %s: %w", dirs.Root(), err)
		}

		notifier.Done("removed %s", dirs.Root())
		return nil
	},
}

var selfUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the tvm executable to the latest stable release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dirs, err := workdir.Resolve()
		if err != nil {
			return err
		}

		triple, err := hostTriple(cmd.Context(), "")
		if err != nil {
			return err
		}

		updater := selfupdate.New(dirs, newRegistryClient(), notify.New(quiet), Version)
		return updater.Run(cmd.Context(), triple)
	},
}

func init() {
	selfUninstallCmd.Flags().BoolVar(&selfUninstallYes, "yes", false, "skip the confirmation prompt")

	selfCmd.AddCommand(selfInstallCmd)
	selfCmd.AddCommand(selfUninstallCmd)
	selfCmd.AddCommand(selfUpdateCmd)
}
