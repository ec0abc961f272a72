// Package platform detects the host target triple used to select release
// artifacts, plus host details for diagnostics.
package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// Info describes the host platform.
type Info struct {
	// OS is the Go runtime OS name ("linux", "darwin", ...).
	OS string
	// Arch is the Go runtime architecture ("amd64", "arm64").
	Arch string
	// Triple is the release target triple, e.g. "aarch64-apple-darwin".
	Triple string
	// Distro and DistroVersion are best-effort Linux distribution details.
	Distro        string
	DistroVersion string
}

// Detect resolves the host triple and, on Linux, distribution details.
// Distro detection failures fall back to OS/arch only; a missing triple
// mapping is a hard error.
func Detect(ctx context.Context) (*Info, error) {
	triple, err := Triple(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return nil, err
	}

	info := &Info{
		OS:     runtime.GOOS,
		Arch:   runtime.GOARCH,
		Triple: triple,
	}

	if runtime.GOOS == "linux" {
		distro, _, version, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			// OS and arch are enough to pick artifacts.
			return info, nil
		}
		info.Distro = distro
		info.DistroVersion = version
	}

	return info, nil
}

// Triple maps a GOOS/GOARCH pair onto the target triple the registry
// publishes artifacts for. Linux releases are built against musl so one
// artifact serves every distribution.
func Triple(goos, goarch string) (string, error) {
	switch goos + "/" + goarch {
	case "darwin/arm64":
		return "aarch64-apple-darwin", nil
	case "darwin/amd64":
		return "x86_64-apple-darwin", nil
	case "linux/arm64":
		return "aarch64-unknown-linux-musl", nil
	case "linux/amd64":
		return "x86_64-unknown-linux-musl", nil
	case "windows/amd64":
		return "x86_64-pc-windows-msvc", nil
	default:
		return "", fmt.Errorf("unsupported platform: %s/%s", goos, goarch)
	}
}

// Describe returns a single-line host summary for the version command.
func (i *Info) Describe() string {
	if i.Distro != "" {
		return fmt.Sprintf("%s (%s %s, %s)", i.Triple, i.Distro, i.DistroVersion, i.Arch)
	}
	return fmt.Sprintf("%s (%s, %s)", i.Triple, i.OS, i.Arch)
}
