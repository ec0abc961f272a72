// Package version implements the local lifecycle of installed releases:
// staged installs, atomic switches, channel updates, uninstalls, and
// inventory listing. All state lives under the tvm home directory.
package version

import (
	"fmt"

	"github.com/ZebulonRouseFrantzich/tvm/internal/artifact"
	"github.com/ZebulonRouseFrantzich/tvm/internal/lockfile"
	"github.com/ZebulonRouseFrantzich/tvm/internal/notify"
	"github.com/ZebulonRouseFrantzich/tvm/internal/registry"
	"github.com/ZebulonRouseFrantzich/tvm/internal/settings"
	"github.com/ZebulonRouseFrantzich/tvm/internal/workdir"
)

// NotInstalledError reports an operation on a selector that has no version
// directory.
type NotInstalledError struct {
	Selector string
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("version %q is not installed", e.Selector)
}

// Manager orchestrates version operations against one home directory.
type Manager struct {
	dirs       workdir.Dir
	client     *registry.Client
	downloader *artifact.Downloader
	notifier   *notify.Notifier
}

// NewManager creates a manager with dependency injection.
func NewManager(dirs workdir.Dir, client *registry.Client, notifier *notify.Notifier) *Manager {
	return &Manager{
		dirs:       dirs,
		client:     client,
		downloader: artifact.NewDownloader(),
		notifier:   notifier,
	}
}

// Settings opens the home directory's settings file.
func (m *Manager) Settings() (*settings.Settings, error) {
	return settings.Open(m.dirs.SettingsPath())
}

// withLock runs fn while holding the home directory lock, so two tvm
// processes cannot mutate the same home concurrently.
func (m *Manager) withLock(fn func() error) error {
	lock, err := lockfile.Acquire(m.dirs.Root())
	if err != nil {
		return err
	}
	defer lock.Release()
	return fn()
}
