package platform

import (
	"context"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect performs platform detection and returns platform information.
//
// The OS comes from runtime.GOOS and the architecture from the kernel's
// machine name via gopsutil. If the kernel query fails the GOARCH value is
// translated to its uname equivalent instead.
//
// On Linux, distribution details are filled in on a best-effort basis; a
// failed distro lookup never fails detection.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "platform detection cancelled")
	}

	machine, err := host.KernelArch()
	if err != nil || strings.TrimSpace(machine) == "" {
		machine = machineFromGOARCH(runtime.GOARCH)
	}

	info, err := newInfo(runtime.GOOS, strings.TrimSpace(machine))
	if err != nil {
		return nil, err
	}

	if info.IsLinux() {
		platform, family, version, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			// Check if context was cancelled - this is a hard failure
			if ctx.Err() != nil {
				return nil, errors.Wrap(ctx.Err(), "platform detection cancelled")
			}
			return info, nil
		}

		platform = normalizePlatform(platform)
		if platform != "" {
			info.Platform = platform
			info.Family = mapFamily(family)
			info.Version = normalizePlatform(version)
		}
	}

	return info, nil
}

// StaticDetector reports a fixed OS and architecture instead of asking the
// host. It is used for overrides and tests.
type StaticDetector struct {
	OS   string
	Arch string
}

// Detect resolves the configured pair.
func (d StaticDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "platform detection cancelled")
	}
	return newInfo(d.OS, d.Arch)
}

func newInfo(osName, arch string) (*Info, error) {
	tag, err := Resolve(osName, arch)
	if err != nil {
		return nil, err
	}
	return &Info{
		OS:      osName,
		ArchRaw: arch,
		Tag:     tag,
	}, nil
}
