// Package selfupdate replaces the running tvm executable with a newer build
// from the registry. It only ever touches the manager binary: settings and
// installed versions are out of bounds here.
package selfupdate

import (
	"context"
	"crypto"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/inconshreveable/go-update"
	"golang.org/x/mod/semver"

	"github.com/ZebulonRouseFrantzich/tvm/internal/artifact"
	"github.com/ZebulonRouseFrantzich/tvm/internal/notify"
	"github.com/ZebulonRouseFrantzich/tvm/internal/registry"
	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
	"github.com/ZebulonRouseFrantzich/tvm/internal/workdir"
)

// EnvUpdateVersion overrides the version the self-update targets. Without it
// the updater follows the latest stable release.
const EnvUpdateVersion = "TVM_UPDATE_VERSION"

// Updater performs the manager's self-update.
type Updater struct {
	dirs           workdir.Dir
	client         *registry.Client
	downloader     *artifact.Downloader
	notifier       *notify.Notifier
	currentVersion string
}

// New creates an updater for the given home directory and running version.
func New(dirs workdir.Dir, client *registry.Client, notifier *notify.Notifier, currentVersion string) *Updater {
	return &Updater{
		dirs:           dirs,
		client:         client,
		downloader:     artifact.NewDownloader(),
		notifier:       notifier,
		currentVersion: currentVersion,
	}
}

// Run resolves the target version, and when it differs from the running one,
// downloads the tvm artifact, verifies its checksum, and swaps the installed
// executable via write-new-then-rename.
func (u *Updater) Run(ctx context.Context, triple string) error {
	target, err := u.targetVersion(ctx)
	if err != nil {
		return err
	}

	if sameVersion(u.currentVersion, target) {
		u.notifier.Done("already up-to-date")
		return nil
	}

	ps, err := u.client.ResolvePackageSet(ctx, selector.Static(target), triple)
	if err != nil {
		return err
	}

	art, ok := ps.Artifact(workdir.ManagerBinary)
	if !ok {
		art, ok = ps.Artifact(workdir.ManagerBinary + ".exe")
	}
	if !ok {
		return fmt.Errorf("release %s does not ship a %s binary for %s", ps.Tag, workdir.ManagerBinary, triple)
	}
	if art.Digest == "" {
		return fmt.Errorf("release %s publishes no checksum for the %s binary", ps.Tag, workdir.ManagerBinary)
	}

	u.notifier.Info("downloading %s (version %s)", workdir.ManagerBinary, target)

	if err := os.MkdirAll(u.dirs.TmpDir(), 0755); err != nil {
		return fmt.Errorf("create tmp directory: %w", err)
	}
	downloadPath := filepath.Join(u.dirs.TmpDir(), workdir.ManagerBinary+"-"+uuid.NewString())
	defer os.Remove(downloadPath)

	if err := u.downloader.DownloadToFile(ctx, art.DownloadURL, downloadPath); err != nil {
		return err
	}

	if err := u.apply(downloadPath, art.Digest); err != nil {
		return err
	}

	u.notifier.Done("updated %s to version %s", workdir.ManagerBinary, target)
	return nil
}

// targetVersion is the env override when present, otherwise the registry's
// latest stable release.
func (u *Updater) targetVersion(ctx context.Context) (string, error) {
	if override := os.Getenv(EnvUpdateVersion); override != "" {
		log.Debug("self-update target overridden", "version", override)
		return strings.TrimPrefix(override, "v"), nil
	}
	return u.client.StableVersion(ctx)
}

// apply swaps the installed executable for the downloaded file. The checksum
// is verified against the downloaded bytes before anything is renamed, and
// the old binary stays in place on any failure.
func (u *Updater) apply(downloadPath, digest string) error {
	sum, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(digest), "sha256:"))
	if err != nil {
		return fmt.Errorf("malformed checksum: %w", err)
	}

	f, err := os.Open(downloadPath)
	if err != nil {
		return fmt.Errorf("open downloaded binary: %w", err)
	}
	defer f.Close()

	err = update.Apply(f, update.Options{
		TargetPath: u.dirs.ManagerPath(),
		TargetMode: 0755,
		Checksum:   sum,
		Hash:       crypto.SHA256,
	})
	if err != nil {
		if rerr := update.RollbackError(err); rerr != nil {
			return fmt.Errorf("apply update failed and rollback failed: %w", rerr)
		}
		return fmt.Errorf("apply update: %w", err)
	}

	return nil
}

// sameVersion compares semantically when both sides parse as versions, and
// byte-wise otherwise (dev builds carry non-semver version strings).
func sameVersion(current, target string) bool {
	c := "v" + strings.TrimPrefix(current, "v")
	t := "v" + strings.TrimPrefix(target, "v")
	if semver.IsValid(c) && semver.IsValid(t) {
		return semver.Compare(c, t) == 0
	}
	return current == target
}
