package version

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ZebulonRouseFrantzich/tvm/internal/artifact"
	"github.com/ZebulonRouseFrantzich/tvm/internal/manifest"
	"github.com/ZebulonRouseFrantzich/tvm/internal/registry"
	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
)

// Install resolves a selector against the registry, downloads and verifies
// its binaries into a staging directory, and commits the directory with a
// rename. The active selection is never changed; switching is its own
// operation. Installing an already-installed selector skips the network
// entirely.
func (m *Manager) Install(ctx context.Context, sel selector.Selector, triple string) error {
	return m.withLock(func() error {
		return m.install(ctx, sel, triple)
	})
}

func (m *Manager) install(ctx context.Context, sel selector.Selector, triple string) error {
	if err := m.dirs.Init(); err != nil {
		return err
	}

	versionDir := m.dirs.VersionDir(sel)
	if existing, err := manifest.Load(versionDir); err == nil {
		m.notifier.Info("%s is already installed (version %s)", sel.String(), existing.Version)
		return nil
	}

	ps, err := m.client.ResolveInstallSet(ctx, sel, triple)
	if err != nil {
		return err
	}

	m.notifier.Info("installing %s (version %s)", sel.String(), ps.Version)

	stagingDir := filepath.Join(m.dirs.TmpDir(), "staging-"+uuid.NewString())
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	var installed []manifest.Artifact
	for _, art := range ps.Artifacts {
		if err := m.fetchArtifact(ctx, &art, stagingDir); err != nil {
			return err
		}
		installed = append(installed, manifest.Artifact{Name: art.Name, Version: art.Version})
	}

	if err := manifest.New(sel, ps.Version, installed).Save(stagingDir); err != nil {
		return err
	}

	// The staging directory becomes the version directory in one rename, so a
	// version directory with a manifest is always complete.
	if err := os.RemoveAll(versionDir); err != nil {
		return fmt.Errorf("clear version directory: %w", err)
	}
	if err := os.Rename(stagingDir, versionDir); err != nil {
		return fmt.Errorf("commit version directory: %w", err)
	}

	m.notifier.Done("installed %s (version %s)", sel.String(), ps.Version)
	m.notifier.Help("run 'tvm switch %s' to activate it", sel.String())
	return nil
}

// fetchArtifact downloads one binary into the staging directory and runs the
// applicable verifications.
func (m *Manager) fetchArtifact(ctx context.Context, art *registry.Artifact, stagingDir string) error {
	m.notifier.Info("downloading %s (version %s)", art.Name, art.Version)

	destPath := filepath.Join(stagingDir, art.Name)
	if err := m.downloader.DownloadToFile(ctx, art.DownloadURL, destPath); err != nil {
		return err
	}

	if art.Digest != "" {
		if err := artifact.VerifyDigest(destPath, art.Digest); err != nil {
			return err
		}
	} else {
		log.Debug("no digest published, skipping checksum", "artifact", art.Name)
	}

	if artifact.HasKeyring(m.dirs.KeyringDir()) {
		if art.SignatureURL == "" {
			m.notifier.Warn("no signature published for %s", art.Name)
		} else {
			sigPath := destPath + ".asc"
			if err := m.downloader.DownloadToFile(ctx, art.SignatureURL, sigPath); err != nil {
				return err
			}
			signer, err := artifact.VerifySignature(destPath, sigPath, m.dirs.KeyringDir())
			if err != nil {
				return err
			}
			log.Debug("artifact signature ok", "artifact", art.Name, "signer", signer)
			os.Remove(sigPath)
		}
	}

	return artifact.SetExecutable(destPath)
}
