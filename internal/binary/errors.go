package binary

import (
	"github.com/pkg/errors"

	"github.com/customeros/mailsherpa-installer/internal/platform"
)

// Kind classifies installer failures. Each kind maps to its own exit code.
type Kind int

const (
	// KindUnknown is any failure outside the installer steps
	KindUnknown Kind = iota
	// KindUnsupportedPlatform means no archive exists for the host
	KindUnsupportedPlatform
	// KindDownloadFailed covers network, HTTP status and write errors while downloading
	KindDownloadFailed
	// KindExtractionFailed covers missing, corrupt or non gzip+tar archives
	KindExtractionFailed
	// KindRenameFailed means the extracted binary could not be renamed
	KindRenameFailed
	// KindCleanupFailed means the archive could not be removed
	KindCleanupFailed
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindUnsupportedPlatform:
		return "unsupported platform"
	case KindDownloadFailed:
		return "download failed"
	case KindExtractionFailed:
		return "extraction failed"
	case KindRenameFailed:
		return "rename failed"
	case KindCleanupFailed:
		return "cleanup failed"
	default:
		return "unknown error"
	}
}

// ExitCode returns the process exit status for the kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindUnsupportedPlatform:
		return 2
	case KindDownloadFailed:
		return 3
	case KindExtractionFailed:
		return 4
	case KindRenameFailed:
		return 5
	case KindCleanupFailed:
		return 6
	default:
		return 1
	}
}

// Error is a failure of one installer step.
type Error struct {
	Kind Kind
	Path string // URL or file the step was working on
	Err  error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf classifies err. nil is KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var stepErr *Error
	if errors.As(err, &stepErr) {
		return stepErr.Kind
	}

	var unsupported *platform.UnsupportedError
	if errors.As(err, &unsupported) {
		return KindUnsupportedPlatform
	}

	return KindUnknown
}

// ExitCode returns 0 for nil and the kind's exit code otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return KindOf(err).ExitCode()
}

func newError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}
