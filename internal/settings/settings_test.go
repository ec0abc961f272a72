package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
)

func TestOpenMissingFileIsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "settings.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !s.Active.IsUnset() {
		t.Errorf("active selector = %v, want unset", s.Active)
	}
	if s.Version != "" {
		t.Errorf("version = %q, want empty", s.Version)
	}
}

func TestOpenEmptyFileIsValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Active.IsUnset() {
		t.Errorf("active selector = %v, want unset", s.Active)
	}
}

func TestRoundTripChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.SetActive(selector.Channel("stable"), "0.10.14")
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A bare channel is persisted as a plain string, not a table.
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(content), "[channel]") {
		t.Errorf("channel selector persisted as a table:\n%s", content)
	}

	loaded, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !loaded.Active.Equal(selector.Channel("stable")) {
		t.Errorf("active = %v, want channel stable", loaded.Active)
	}
	if loaded.Version != "0.10.14" {
		t.Errorf("version = %q, want 0.10.14", loaded.Version)
	}
}

func TestRoundTripStaticPin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.SetActive(selector.Static("0.10.15"), "0.10.15")
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A static pin is persisted as a table with a tag field.
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(content), "tag") {
		t.Errorf("static pin persisted without tag field:\n%s", content)
	}

	loaded, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !loaded.Active.Equal(selector.Static("0.10.15")) {
		t.Errorf("active = %v, want static 0.10.15", loaded.Active)
	}
}

func TestSaveIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.SetActive(selector.Channel("latest"), "0.11.0")
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind after save")
	}
}
