package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	m := New(selector.Channel("stable"), "0.10.14", []Artifact{
		{Name: "tidal", Version: "0.10.14"},
		{Name: "tidal-run", Version: "0.10.12"},
	})

	if err := m.Save(dir); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Version != "0.10.14" {
		t.Errorf("version = %q, want 0.10.14", loaded.Version)
	}
	if !loaded.SelectorValue().Equal(selector.Channel("stable")) {
		t.Errorf("selector = %v, want channel stable", loaded.SelectorValue())
	}
	if len(loaded.Artifacts) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(loaded.Artifacts))
	}

	v, ok := loaded.ArtifactVersion("tidal-run")
	if !ok || v != "0.10.12" {
		t.Errorf("tidal-run version = %q/%v, want 0.10.12/true", v, ok)
	}
}

func TestLoadMissingManifest(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestStaticKindSurvivesRoundTrip(t *testing.T) {
	dir := t.TempDir()

	m := New(selector.Static("0.10.15"), "0.10.15", []Artifact{{Name: "tidal", Version: "0.10.15"}})
	if err := m.Save(dir); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.SelectorValue().IsStatic() {
		t.Errorf("selector kind lost: %v", loaded.SelectorValue())
	}
}

func TestDiff(t *testing.T) {
	prev := []Artifact{
		{Name: "tidal", Version: "0.10.14"},
		{Name: "tidal-run", Version: "0.10.12"},
		{Name: "tdk", Version: "0.10.14"},
	}
	next := []Artifact{
		{Name: "tidal", Version: "0.10.15"},
		{Name: "tidal-run", Version: "0.10.12"},
		{Name: "tdk", Version: "0.10.15"},
	}

	changes := Diff(prev, next)
	if len(changes) != 2 {
		t.Fatalf("changes = %d, want 2: %+v", len(changes), changes)
	}

	byName := make(map[string]Change)
	for _, c := range changes {
		byName[c.Name] = c
	}

	if c := byName["tidal"]; c.From != "0.10.14" || c.To != "0.10.15" {
		t.Errorf("tidal change = %+v", c)
	}
	if _, ok := byName["tidal-run"]; ok {
		t.Error("unchanged artifact reported as changed")
	}
}

func TestDiffReportsNewArtifacts(t *testing.T) {
	changes := Diff(nil, []Artifact{{Name: "tdk", Version: "0.11.0"}})
	if len(changes) != 1 || changes[0].From != "" || changes[0].To != "0.11.0" {
		t.Fatalf("changes = %+v", changes)
	}
}

func TestOrphans(t *testing.T) {
	prev := []Artifact{
		{Name: "tidal", Version: "0.10.14"},
		{Name: "legacy-tool", Version: "0.10.14"},
	}
	next := []Artifact{{Name: "tidal", Version: "0.10.15"}}

	orphans := Orphans(prev, next)
	if len(orphans) != 1 || orphans[0] != "legacy-tool" {
		t.Fatalf("orphans = %v", orphans)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()

	m := New(selector.Static("0.10.15"), "0.10.15", nil)
	if err := m.Save(dir); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, FileName+".tmp")); !os.IsNotExist(err) {
		t.Error("temporary manifest left behind")
	}
}
