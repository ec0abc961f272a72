// Package workdir resolves the tvm home directory and its on-disk layout:
// bin/ for the manager binary and env file, versions/ for installed release
// directories, settings.toml for the active selector record.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
)

const (
	// EnvHome overrides the default home directory location.
	EnvHome = "TVM_HOME"
	// DefaultDirName is the home directory name under $HOME.
	DefaultDirName = ".tvm"
	// SettingsFile is the global active-selector record.
	SettingsFile = "settings.toml"
	// EnvFileName is the sourceable shell environment file under bin/.
	EnvFileName = "env"
	// ManagerBinary is the name of the manager's own executable.
	ManagerBinary = "tvm"
)

// Dir is the resolved tvm home directory.
type Dir struct {
	root string
}

// Resolve locates the home directory from TVM_HOME or the user's home.
func Resolve() (Dir, error) {
	if override := os.Getenv(EnvHome); override != "" {
		return Dir{root: override}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Dir{}, fmt.Errorf("resolve home directory: %w", err)
	}

	return Dir{root: filepath.Join(home, DefaultDirName)}, nil
}

// At returns a Dir rooted at an explicit path. Used by tests to run against
// an isolated directory.
func At(root string) Dir {
	return Dir{root: root}
}

// Root returns the home directory path.
func (d Dir) Root() string {
	return d.root
}

// BinDir holds the manager binary, the env file, and the active copies of the
// managed binaries.
func (d Dir) BinDir() string {
	return filepath.Join(d.root, "bin")
}

// VersionsDir holds one directory per installed selector.
func (d Dir) VersionsDir() string {
	return filepath.Join(d.root, "versions")
}

// VersionDir returns the directory for one installed selector, named by the
// selector's string form.
func (d Dir) VersionDir(sel selector.Selector) string {
	return filepath.Join(d.VersionsDir(), sel.String())
}

// SettingsPath returns the settings.toml location.
func (d Dir) SettingsPath() string {
	return filepath.Join(d.root, SettingsFile)
}

// KeyringDir holds trusted release-signing public keys (*.asc).
func (d Dir) KeyringDir() string {
	return filepath.Join(d.root, "keyrings")
}

// TmpDir holds staging directories for in-flight downloads. Staging and the
// final version directories share a filesystem so commits are a rename.
func (d Dir) TmpDir() string {
	return filepath.Join(d.root, "tmp")
}

// ManagerPath returns the installed location of the tvm executable.
func (d Dir) ManagerPath() string {
	return filepath.Join(d.BinDir(), ManagerBinary)
}

// EnvFilePath returns the sourceable env file location.
func (d Dir) EnvFilePath() string {
	return filepath.Join(d.BinDir(), EnvFileName)
}

// Init creates the directory structure. Idempotent.
func (d Dir) Init() error {
	dirs := []string{
		d.root,
		d.BinDir(),
		d.VersionsDir(),
		d.KeyringDir(),
		d.TmpDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

// WriteEnvFile writes the sourceable env file that prepends the bin
// directory to PATH. POSIX sh syntax, so one file serves bash and zsh.
func (d Dir) WriteEnvFile() error {
	content := fmt.Sprintf(`#!/bin/sh
# tvm shell setup
case ":${PATH}:" in
    *:%q:*)
        ;;
    *)
        export PATH=%q:"$PATH"
        ;;
esac
`, d.BinDir(), d.BinDir())

	if err := os.WriteFile(d.EnvFilePath(), []byte(content), 0644); err != nil {
		return fmt.Errorf("write env file: %w", err)
	}

	return nil
}
