package binary

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/customeros/mailsherpa-installer/internal/platform"
)

// NewArtifact builds the archive names and download URL for a tag.
// Pattern: {base}/mailsherpa-{tag}.tar.gz
func NewArtifact(baseURL string, tag platform.Tag) (Artifact, error) {
	if !tag.Valid() {
		return Artifact{}, errors.Errorf("unknown platform tag: %q", tag)
	}

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Artifact{}, errors.New("base URL is required")
	}

	extracted := extractedName(tag)
	archive := extracted + ArchiveExtension

	return Artifact{
		Tag:           tag,
		ArchiveName:   archive,
		URL:           fmt.Sprintf("%s/%s", base, archive),
		ExtractedName: extracted,
		CanonicalName: BinaryName,
	}, nil
}

// extractedName is the name of the binary inside the archive for a tag
func extractedName(tag platform.Tag) string {
	return fmt.Sprintf("%s-%s", BinaryName, tag)
}
