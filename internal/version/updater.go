package version

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ZebulonRouseFrantzich/tvm/internal/manifest"
	"github.com/ZebulonRouseFrantzich/tvm/internal/registry"
)

// Update refreshes the active channel in place. It re-resolves the channel,
// downloads only the artifacts whose versions changed, removes artifacts the
// release no longer ships, rewrites the manifest, and re-activates. Static
// pins never update; an unchanged channel downloads nothing.
func (m *Manager) Update(ctx context.Context, triple string) error {
	return m.withLock(func() error {
		return m.update(ctx, triple)
	})
}

func (m *Manager) update(ctx context.Context, triple string) error {
	cfg, err := m.Settings()
	if err != nil {
		return err
	}

	sel := cfg.Active
	if sel.IsUnset() {
		return fmt.Errorf("no active version to update")
	}

	if !sel.Updatable() {
		m.notifier.Warn("cannot update a static version; use a channel")
		return nil
	}

	versionDir := m.dirs.VersionDir(sel)
	current, err := manifest.Load(versionDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &NotInstalledError{Selector: sel.String()}
		}
		return err
	}

	ps, err := m.client.ResolveInstallSet(ctx, sel, triple)
	if err != nil {
		return err
	}

	next := make([]manifest.Artifact, 0, len(ps.Artifacts))
	for _, a := range ps.Artifacts {
		next = append(next, manifest.Artifact{Name: a.Name, Version: a.Version})
	}

	changes := manifest.Diff(current.Artifacts, next)
	orphans := manifest.Orphans(current.Artifacts, next)

	if len(changes) == 0 && len(orphans) == 0 {
		m.notifier.Done("already up to date")
		return nil
	}

	if err := m.applyChanges(ctx, ps, changes, orphans, versionDir); err != nil {
		return err
	}

	if err := manifest.New(sel, ps.Version, next).Save(versionDir); err != nil {
		return err
	}

	m.notifier.Done("updated %s to version %s", sel.String(), ps.Version)
	return m.switchTo(sel)
}

// applyChanges downloads the changed artifacts into a staging directory,
// verifies them, then moves them into the version directory and deletes
// orphaned binaries. Downloads are fully verified before any file in the
// version directory is touched.
func (m *Manager) applyChanges(ctx context.Context, ps *registry.PackageSet, changes []manifest.Change, orphans []string, versionDir string) error {
	stagingDir := filepath.Join(m.dirs.TmpDir(), "staging-"+uuid.NewString())
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	for _, ch := range changes {
		art, ok := ps.Artifact(ch.Name)
		if !ok {
			return fmt.Errorf("resolved release is missing artifact %q", ch.Name)
		}
		if ch.From == "" {
			m.notifier.Info("adding %s (version %s)", ch.Name, ch.To)
		} else {
			m.notifier.Info("updating %s from %s to %s", ch.Name, ch.From, ch.To)
		}
		if err := m.fetchArtifact(ctx, art, stagingDir); err != nil {
			return err
		}
	}

	for _, ch := range changes {
		src := filepath.Join(stagingDir, ch.Name)
		dst := filepath.Join(versionDir, ch.Name)
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("place %s: %w", ch.Name, err)
		}
	}

	for _, name := range orphans {
		m.notifier.Info("removing %s, no longer part of the release", name)
		if err := os.Remove(filepath.Join(versionDir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}

	return nil
}
