package version

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/tvm/internal/artifact"
	"github.com/ZebulonRouseFrantzich/tvm/internal/manifest"
	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
)

// Switch makes an installed selector the active one: every binary in its
// manifest is copied into the bin directory, then the settings file is
// rewritten. Settings are written last, so a failed switch leaves the
// previous active selector untouched.
func (m *Manager) Switch(sel selector.Selector) error {
	return m.withLock(func() error {
		return m.switchTo(sel)
	})
}

func (m *Manager) switchTo(sel selector.Selector) error {
	versionDir := m.dirs.VersionDir(sel)

	man, err := manifest.Load(versionDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &NotInstalledError{Selector: sel.String()}
		}
		return err
	}

	if err := os.MkdirAll(m.dirs.BinDir(), 0755); err != nil {
		return fmt.Errorf("create bin directory: %w", err)
	}

	for _, a := range man.Artifacts {
		src := filepath.Join(versionDir, a.Name)
		dst := filepath.Join(m.dirs.BinDir(), a.Name)
		if err := artifact.ReplaceFile(src, dst); err != nil {
			return fmt.Errorf("activate %s: %w", a.Name, err)
		}
		if err := artifact.SetExecutable(dst); err != nil {
			return err
		}
	}

	cfg, err := m.Settings()
	if err != nil {
		return err
	}
	cfg.SetActive(sel, man.Version)
	if err := cfg.Save(); err != nil {
		return err
	}

	m.notifier.Done("now using %s (version %s)", sel.String(), man.Version)
	return nil
}
