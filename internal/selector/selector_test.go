package selector

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind Kind
		wantStr  string
		wantErr  bool
	}{
		{
			name:     "bare_version_is_static",
			input:    "0.10.15",
			wantKind: KindStatic,
			wantStr:  "0.10.15",
		},
		{
			name:     "v_prefixed_version_is_static",
			input:    "v0.10.15",
			wantKind: KindStatic,
			wantStr:  "0.10.15",
		},
		{
			name:     "prerelease_version_is_static",
			input:    "0.11.0-rc.1",
			wantKind: KindStatic,
			wantStr:  "0.11.0-rc.1",
		},
		{
			name:     "stable_is_channel",
			input:    "stable",
			wantKind: KindChannel,
			wantStr:  "stable",
		},
		{
			name:     "latest_is_channel",
			input:    "latest",
			wantKind: KindChannel,
			wantStr:  "latest",
		},
		{
			name:     "arbitrary_name_is_channel",
			input:    "nightly",
			wantKind: KindChannel,
			wantStr:  "nightly",
		},
		{
			name:    "empty_is_error",
			input:   "",
			wantErr: true,
		},
		{
			name:    "path_separator_is_error",
			input:   "../escape",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Parse(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sel.Kind() != tt.wantKind {
				t.Errorf("kind = %v, want %v", sel.Kind(), tt.wantKind)
			}
			if sel.String() != tt.wantStr {
				t.Errorf("string = %q, want %q", sel.String(), tt.wantStr)
			}
		})
	}
}

func TestEqualDistinguishesKind(t *testing.T) {
	// A channel and a pin resolving to the same number are distinct.
	ch := Channel("0.10.15-custom")
	pin := Static("0.10.15")

	if ch.Equal(pin) {
		t.Error("channel and static selectors must not compare equal")
	}

	if !Static("0.10.15").Equal(Static("0.10.15")) {
		t.Error("identical static selectors must compare equal")
	}

	if Channel("stable").Equal(Channel("latest")) {
		t.Error("different channels must not compare equal")
	}
}

func TestUpdatable(t *testing.T) {
	if !Channel("stable").Updatable() {
		t.Error("channels must be updatable")
	}
	if Static("0.10.15").Updatable() {
		t.Error("static pins must not be updatable")
	}
	if None().Updatable() {
		t.Error("unset selector must not be updatable")
	}
}
