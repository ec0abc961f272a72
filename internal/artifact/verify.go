package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/charmbracelet/log"
)

// VerifyDigest compares a file's sha256 checksum against a published digest
// of the form "sha256:<hex>" (the prefix is optional).
func VerifyDigest(path, digest string) error {
	expected := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(digest), "sha256:"))
	if expected == "" {
		return fmt.Errorf("empty digest")
	}

	actual, err := FileSHA256(path)
	if err != nil {
		return err
	}

	if actual != expected {
		return fmt.Errorf("checksum mismatch for %s: got %s, want %s", filepath.Base(path), actual, expected)
	}

	return nil
}

// FileSHA256 returns the lowercase hex sha256 checksum of a file.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// VerifySignature checks a detached armored signature against the trusted
// keys in keyringDir. Returns the identity of the signing key.
func VerifySignature(binaryPath, sigPath, keyringDir string) (string, error) {
	keyring, err := loadKeyring(keyringDir)
	if err != nil {
		return "", err
	}
	if len(keyring) == 0 {
		return "", fmt.Errorf("no trusted keys in %s", keyringDir)
	}

	binary, err := os.Open(binaryPath)
	if err != nil {
		return "", fmt.Errorf("open binary: %w", err)
	}
	defer binary.Close()

	sig, err := os.Open(sigPath)
	if err != nil {
		return "", fmt.Errorf("open signature: %w", err)
	}
	defer sig.Close()

	signer, err := openpgp.CheckArmoredDetachedSignature(keyring, binary, sig, nil)
	if err != nil {
		return "", fmt.Errorf("signature verification failed: %w", err)
	}

	identity := signerIdentity(signer)
	log.Debug("signature verified", "binary", filepath.Base(binaryPath), "signer", identity)
	return identity, nil
}

// HasKeyring reports whether keyringDir holds at least one trusted key.
// Signature verification is opt-in: no keyring means no signature checks.
func HasKeyring(keyringDir string) bool {
	keys, err := filepath.Glob(filepath.Join(keyringDir, "*.asc"))
	return err == nil && len(keys) > 0
}

// loadKeyring reads every armored key file in keyringDir into one list.
func loadKeyring(keyringDir string) (openpgp.EntityList, error) {
	paths, err := filepath.Glob(filepath.Join(keyringDir, "*.asc"))
	if err != nil {
		return nil, fmt.Errorf("scan keyring dir: %w", err)
	}

	var keyring openpgp.EntityList
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open keyring %s: %w", path, err)
		}

		entities, err := openpgp.ReadArmoredKeyRing(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read keyring %s: %w", path, err)
		}

		keyring = append(keyring, entities...)
	}

	return keyring, nil
}

func signerIdentity(signer *openpgp.Entity) string {
	if signer == nil {
		return "unknown"
	}
	for name := range signer.Identities {
		return name
	}
	return "unknown"
}
