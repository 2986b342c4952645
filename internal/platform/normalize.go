package platform

import (
	"strings"
)

// familyMap maps distribution names to their canonical family names.
// This is used to normalize variations of family strings from gopsutil.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian, // gopsutil might return ubuntu as family
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
	"gentoo":   FamilyGentoo,
}

// machineNames maps GOARCH values to the uname machine names the kernel
// reports for them. Only used when the kernel cannot be asked directly.
var machineNames = map[string]string{
	"amd64":   "x86_64",
	"arm64":   "aarch64",
	"arm":     "armv7l",
	"386":     "i686",
	"ppc64le": "ppc64le",
	"s390x":   "s390x",
	"riscv64": "riscv64",
}

// Resolve maps an OS name and machine architecture to a release tag.
//
// Both inputs are compared case-insensitively. darwin always resolves to
// TagMacOS. On linux the architecture is matched by substring: "arm" or
// "aarch64" selects TagLinuxARM64, otherwise "x86_64" selects TagLinuxAMD64.
// Everything else returns an *UnsupportedError carrying the raw inputs.
func Resolve(osName, arch string) (Tag, error) {
	system := strings.ToLower(osName)
	machine := strings.ToLower(arch)

	switch system {
	case "darwin":
		return TagMacOS, nil
	case "linux":
		if strings.Contains(machine, "arm") || strings.Contains(machine, "aarch64") {
			return TagLinuxARM64, nil
		}
		if strings.Contains(machine, "x86_64") {
			return TagLinuxAMD64, nil
		}
	}

	return "", &UnsupportedError{OS: osName, Arch: arch}
}

// machineFromGOARCH returns the uname-style machine name for a GOARCH value.
func machineFromGOARCH(goarch string) string {
	if name, ok := machineNames[goarch]; ok {
		return name
	}
	return goarch
}

// normalizePlatform converts platform IDs to lowercase for consistency.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps distribution family strings to canonical family names.
// Uses a package-level lookup table for explicit mapping.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}

	// Return "unknown" for unrecognized families
	return FamilyUnknown
}
