package version

import (
	"fmt"
	"os"

	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
)

// Uninstall removes an installed selector's version directory. Settings are
// deliberately left alone, even when the uninstalled selector was active; the
// binaries already copied into bin/ keep working until the next switch.
func (m *Manager) Uninstall(sel selector.Selector) error {
	return m.withLock(func() error {
		return m.uninstall(sel)
	})
}

func (m *Manager) uninstall(sel selector.Selector) error {
	versionDir := m.dirs.VersionDir(sel)

	if _, err := os.Stat(versionDir); err != nil {
		if os.IsNotExist(err) {
			return &NotInstalledError{Selector: sel.String()}
		}
		return fmt.Errorf("stat version directory: %w", err)
	}

	if err := os.RemoveAll(versionDir); err != nil {
		return fmt.Errorf("remove version directory: %w", err)
	}

	cfg, err := m.Settings()
	if err == nil && cfg.Active.Equal(sel) {
		m.notifier.Warn("%s was the active version; switch to another installed version", sel.String())
	}

	m.notifier.Done("uninstalled %s", sel.String())
	return nil
}
