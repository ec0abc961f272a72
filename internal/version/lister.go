package version

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/ZebulonRouseFrantzich/tvm/internal/manifest"
	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
)

// Entry is one installed selector in the inventory.
type Entry struct {
	Selector selector.Selector
	Version  string
	Active   bool
}

// List enumerates the installed versions, sorted by selector string, with the
// active one marked. Directories without a readable manifest are skipped.
func (m *Manager) List() ([]Entry, error) {
	cfg, err := m.Settings()
	if err != nil {
		return nil, err
	}

	dirents, err := os.ReadDir(m.dirs.VersionsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read versions directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirents {
		if !de.IsDir() {
			continue
		}

		man, err := manifest.Load(m.dirs.VersionDir(selector.Channel(de.Name())))
		if err != nil {
			log.Debug("skipping version directory without manifest", "dir", de.Name(), "err", err)
			continue
		}

		sel := man.SelectorValue()
		entries = append(entries, Entry{
			Selector: sel,
			Version:  man.Version,
			Active:   cfg.Active.Equal(sel),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Selector.String() < entries[j].Selector.String()
	})

	return entries, nil
}

// Artifacts returns the per-binary inventory of one installed selector.
func (m *Manager) Artifacts(sel selector.Selector) (*manifest.Manifest, error) {
	man, err := manifest.Load(m.dirs.VersionDir(sel))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotInstalledError{Selector: sel.String()}
		}
		return nil, err
	}
	return man, nil
}
