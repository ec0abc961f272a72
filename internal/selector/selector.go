// Package selector models the user-supplied version selector: a named
// release channel (a mutable pointer such as "stable"), a pinned semantic
// version, or nothing at all. The channel/pin distinction drives update
// eligibility, so it is carried as an explicit tagged variant rather than
// re-derived from strings at every call site.
package selector

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Kind discriminates the selector variants.
type Kind int

const (
	// KindUnset means no selector was provided and none is configured.
	KindUnset Kind = iota
	// KindChannel is a named channel tracking a moving release.
	KindChannel
	// KindStatic is an immutable semantic version pin.
	KindStatic
)

// String returns the kind's persisted name.
func (k Kind) String() string {
	switch k {
	case KindChannel:
		return "channel"
	case KindStatic:
		return "static"
	default:
		return "unset"
	}
}

// Well-known channel names. Any other non-semver selector string is also a
// channel and resolves as a literal registry tag.
const (
	Stable = "stable"
	Latest = "latest"
)

// Selector identifies which release to act on.
type Selector struct {
	kind Kind
	name string // channel name, or bare version string without "v" prefix
}

// None returns the unset selector.
func None() Selector {
	return Selector{}
}

// Channel creates a channel selector.
func Channel(name string) Selector {
	return Selector{kind: KindChannel, name: name}
}

// Static creates a pinned-version selector. The version is stored without a
// "v" prefix.
func Static(version string) Selector {
	return Selector{kind: KindStatic, name: strings.TrimPrefix(version, "v")}
}

// Parse classifies a selector string. Anything that parses as a semantic
// version (with or without a "v" prefix) is a static pin; everything else is
// treated as a channel name.
func Parse(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Selector{}, fmt.Errorf("empty selector")
	}

	bare := strings.TrimPrefix(s, "v")
	if semver.IsValid("v" + bare) {
		return Static(bare), nil
	}

	if strings.ContainsAny(s, "/\\ ") {
		return Selector{}, fmt.Errorf("invalid selector %q", s)
	}

	return Channel(s), nil
}

// Kind returns the selector variant.
func (s Selector) Kind() Kind {
	return s.kind
}

// IsUnset reports whether no selector is set.
func (s Selector) IsUnset() bool {
	return s.kind == KindUnset
}

// IsChannel reports whether the selector is a channel.
func (s Selector) IsChannel() bool {
	return s.kind == KindChannel
}

// IsStatic reports whether the selector is a pinned version.
func (s Selector) IsStatic() bool {
	return s.kind == KindStatic
}

// Updatable reports whether the selector may move to a newer release.
// Static pins are immutable.
func (s Selector) Updatable() bool {
	return s.kind == KindChannel
}

// String returns the selector's canonical string form: the channel name or
// the bare version string. This is also the version directory name.
func (s Selector) String() string {
	return s.name
}

// Version returns the pinned version for static selectors, or "" otherwise.
func (s Selector) Version() string {
	if s.kind != KindStatic {
		return ""
	}
	return s.name
}

// Equal reports whether two selectors match by both kind and value. A channel
// and a static pin that happen to resolve to the same version number are not
// equal.
func (s Selector) Equal(other Selector) bool {
	return s.kind == other.kind && s.name == other.name
}
