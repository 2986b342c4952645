// Package platform detects the host operating system and machine
// architecture and resolves them to the tag mailsherpa release archives are
// named after.
//
// Detection reads the raw machine name the kernel reports (uname -m), not the
// architecture the installer itself was compiled for, so an amd64 build
// running under emulation still resolves to the host's archive. Linux
// distribution details are collected with gopsutil for diagnostics only; they
// never influence the selected tag.
package platform

import (
	"context"
	"fmt"
	"strings"
)

// Tag identifies the OS and architecture combination of a release archive.
type Tag string

const (
	TagMacOS      Tag = "macos"       // any darwin host, architecture ignored
	TagLinuxARM64 Tag = "linux-arm64" // linux on arm* or aarch64
	TagLinuxAMD64 Tag = "linux-amd64" // linux on x86_64
)

// Tags returns every supported tag in a stable order.
func Tags() []Tag {
	return []Tag{TagMacOS, TagLinuxARM64, TagLinuxAMD64}
}

// String returns the string representation of the tag
func (t Tag) String() string {
	return string(t)
}

// Valid reports whether t is one of the supported tags.
func (t Tag) Valid() bool {
	switch t {
	case TagMacOS, TagLinuxARM64, TagLinuxAMD64:
		return true
	default:
		return false
	}
}

// Linux distribution family constants.
// These represent canonical family names for grouping related distributions.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyGentoo  = "gentoo"  // Gentoo
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Info contains platform detection information.
type Info struct {
	OS       string // OS name as reported, e.g. "darwin", "Linux"
	ArchRaw  string // machine hardware name, e.g. "x86_64", "aarch64"
	Tag      Tag    // resolved archive tag
	Platform string // distro ID (Linux only, e.g. "ubuntu"), may be empty
	Family   string // canonical family (e.g. "debian"), may be empty
	Version  string // distro version (Linux only, e.g. "22.04"), may be empty
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return strings.EqualFold(i.OS, "linux")
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return strings.EqualFold(i.OS, "darwin")
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// UnsupportedError is returned when no archive exists for the host.
// OS and Arch hold the strings exactly as they were reported.
type UnsupportedError struct {
	OS   string
	Arch string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported platform: %s %s", strings.ToLower(e.OS), strings.ToLower(e.Arch))
}
