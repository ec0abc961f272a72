package platform

import (
	"context"
	"testing"
)

func TestTriple(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		goarch  string
		want    string
		wantErr bool
	}{
		{"darwin_arm64", "darwin", "arm64", "aarch64-apple-darwin", false},
		{"darwin_amd64", "darwin", "amd64", "x86_64-apple-darwin", false},
		{"linux_amd64", "linux", "amd64", "x86_64-unknown-linux-musl", false},
		{"linux_arm64", "linux", "arm64", "aarch64-unknown-linux-musl", false},
		{"windows_amd64", "windows", "amd64", "x86_64-pc-windows-msvc", false},
		{"unsupported_arch", "linux", "riscv64", "", true},
		{"unsupported_os", "plan9", "amd64", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Triple(tt.goos, tt.goarch)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("triple = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectReturnsHostTriple(t *testing.T) {
	info, err := Detect(context.Background())
	if err != nil {
		t.Skipf("host platform not supported: %v", err)
	}

	if info.Triple == "" {
		t.Error("detect returned empty triple")
	}
	if info.Describe() == "" {
		t.Error("describe returned empty summary")
	}
}
