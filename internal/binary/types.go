package binary

import (
	"time"

	"github.com/customeros/mailsherpa-installer/internal/platform"
)

const (
	// DefaultBaseURL is where release archives are published
	DefaultBaseURL = "https://mailsherpa.sh"
	// BinaryName is the canonical name of the installed binary
	BinaryName = "mailsherpa"
	// ArchiveExtension is the only archive format published
	ArchiveExtension = ".tar.gz"
)

// Artifact describes the release archive for one platform tag.
// It is a plain value computed once per run and passed to every step.
type Artifact struct {
	Tag           platform.Tag
	ArchiveName   string // mailsherpa-<tag>.tar.gz
	URL           string // <base>/<ArchiveName>
	ExtractedName string // mailsherpa-<tag>, top-level entry of the archive
	CanonicalName string // mailsherpa
}

// DownloadResult contains information about a completed download
type DownloadResult struct {
	URL          string
	Path         string
	Bytes        int64
	DownloadTime time.Duration
}

// InstallResult summarizes a successful installation.
type InstallResult struct {
	Platform   *platform.Info
	Artifact   Artifact
	Path       string   // installed binary
	Bytes      int64    // archive size
	Entries    []string // archive entries as extracted
	Executable bool     // installed entry carries an execute bit
	Duration   time.Duration
}
