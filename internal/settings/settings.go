// Package settings persists the single global record of the currently active
// selector in settings.toml. The channel field is either a bare string (a
// channel name) or a table with a tag field (a static pin); that shape is
// load-bearing for update eligibility and must survive round-trips.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
)

// Settings is the active-selector record. The zero value (no active
// selector) is the valid initial state.
type Settings struct {
	// Version is the resolved version of the active selector, without a
	// "v" prefix.
	Version string
	// Active is the selector currently exposed via the bin directory.
	Active selector.Selector

	path string
}

// fileSchema is the TOML wire form. Channel is either a string or a
// {tag = "..."} table, mirroring the two selector kinds.
type fileSchema struct {
	Version string `toml:"version,omitempty"`
	Channel any    `toml:"channel,omitempty"`
}

// Open reads the settings file at path. A missing or empty file yields empty
// settings bound to that path.
func Open(path string) (*Settings, error) {
	s := &Settings{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var raw fileSchema
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	s.Version = raw.Version
	s.Active, err = decodeChannel(raw.Channel)
	if err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	return s, nil
}

// decodeChannel maps the TOML channel value back onto a selector.
func decodeChannel(v any) (selector.Selector, error) {
	switch c := v.(type) {
	case nil:
		return selector.None(), nil
	case string:
		return selector.Channel(c), nil
	case map[string]any:
		tag, ok := c["tag"].(string)
		if !ok {
			return selector.Selector{}, fmt.Errorf("channel table missing tag field")
		}
		return selector.Static(tag), nil
	default:
		return selector.Selector{}, fmt.Errorf("unexpected channel value of type %T", v)
	}
}

// SetActive records a new active selector and its resolved version. The
// caller still has to Save.
func (s *Settings) SetActive(sel selector.Selector, resolvedVersion string) {
	s.Active = sel
	s.Version = resolvedVersion
}

// Path returns the backing file location.
func (s *Settings) Path() string {
	return s.path
}

// Save writes the settings atomically: serialize to a temp file in the same
// directory, then rename over the final path.
func (s *Settings) Save() error {
	raw := fileSchema{Version: s.Version}

	switch s.Active.Kind() {
	case selector.KindChannel:
		raw.Channel = s.Active.String()
	case selector.KindStatic:
		raw.Channel = map[string]string{"tag": s.Active.Version()}
	}

	data, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temporary settings file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename settings file: %w", err)
	}

	return nil
}
