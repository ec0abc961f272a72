// Package manifest persists the per-version record of what was actually
// installed: the selector that produced the directory, the resolved version,
// and the individual artifact versions. Every binary in a version directory
// has a manifest entry and vice versa.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
)

// FileName is the manifest file inside each version directory.
const FileName = "manifest.json"

// Artifact is one installed binary and its own version. Artifact versions
// can lag the release version when a release only rebuilds some binaries.
type Artifact struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Manifest describes one installed version directory.
type Manifest struct {
	// Selector is the selector's string form (channel name or version).
	Selector string `json:"selector"`
	// Kind is "channel" or "static".
	Kind string `json:"kind"`
	// Version is the resolved release version, without a "v" prefix.
	Version string `json:"version"`
	// Artifacts lists every binary present in the directory.
	Artifacts []Artifact `json:"artifacts"`
}

// New builds a manifest for a freshly resolved install.
func New(sel selector.Selector, version string, artifacts []Artifact) *Manifest {
	return &Manifest{
		Selector:  sel.String(),
		Kind:      sel.Kind().String(),
		Version:   version,
		Artifacts: artifacts,
	}
}

// SelectorValue reconstructs the typed selector from the persisted fields.
func (m *Manifest) SelectorValue() selector.Selector {
	if m.Kind == selector.KindStatic.String() {
		return selector.Static(m.Selector)
	}
	return selector.Channel(m.Selector)
}

// ArtifactVersion returns the recorded version for one artifact.
func (m *Manifest) ArtifactVersion(name string) (string, bool) {
	for _, a := range m.Artifacts {
		if a.Name == name {
			return a.Version, true
		}
	}
	return "", false
}

// Load reads the manifest from a version directory. Returns os.ErrNotExist
// (wrapped) when the directory has no manifest.
func Load(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	return &m, nil
}

// Save writes the manifest into a version directory atomically
// (write-tmp-then-rename).
func (m *Manifest) Save(dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	finalPath := filepath.Join(dir, FileName)
	tmpPath := finalPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temporary manifest: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename manifest: %w", err)
	}

	return nil
}

// Change records one artifact transition found by Diff.
type Change struct {
	Name string
	// From is empty for artifacts that are new in the target set.
	From string
	To   string
}

// Diff computes the artifacts in next that are missing from prev or carry a
// different version: the exact set an update must re-download. It is a set
// difference over (name, version) pairs.
func Diff(prev []Artifact, next []Artifact) []Change {
	recorded := make(map[string]string, len(prev))
	for _, a := range prev {
		recorded[a.Name] = a.Version
	}

	var changes []Change
	for _, a := range next {
		from, ok := recorded[a.Name]
		if ok && from == a.Version {
			continue
		}
		if !ok {
			from = ""
		}
		changes = append(changes, Change{Name: a.Name, From: from, To: a.Version})
	}

	return changes
}

// Orphans returns the names recorded in prev that are absent from next.
// Their files are removed on update so the directory matches the manifest.
func Orphans(prev []Artifact, next []Artifact) []string {
	keep := make(map[string]bool, len(next))
	for _, a := range next {
		keep[a.Name] = true
	}

	var orphans []string
	for _, a := range prev {
		if !keep[a.Name] {
			orphans = append(orphans, a.Name)
		}
	}

	return orphans
}
