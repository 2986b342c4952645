package binary

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/customeros/mailsherpa-installer/internal/logging"
	"github.com/customeros/mailsherpa-installer/internal/platform"
)

// Manager runs the installation: detect, download, extract, rename, remove.
type Manager struct {
	workDir    string
	baseURL    string
	fs         afero.Fs
	out        io.Writer
	logger     logging.Logger
	detector   platform.Detector
	downloader *Downloader
	extractor  *Extractor
}

// Config holds configuration for the binary manager
type Config struct {
	// WorkDir is the directory everything is downloaded to and extracted into
	WorkDir string
	// BaseURL is where archives are published (default: DefaultBaseURL)
	BaseURL string
	// Detector reports the host platform (default: platform.NewDetector())
	Detector platform.Detector
	// HTTPClient performs the download (default: http.Client without timeout)
	HTTPClient HTTPClient
	// Fs is the filesystem WorkDir lives on (default: the OS filesystem)
	Fs afero.Fs
	// Out receives the progress lines (default: io.Discard)
	Out io.Writer
	// Progress receives a download progress bar when set
	Progress io.Writer
	// Logger receives diagnostics (default: no-op)
	Logger logging.Logger
}

// NewManager creates a new binary manager
func NewManager(config Config) (*Manager, error) {
	if config.WorkDir == "" {
		return nil, errors.New("WorkDir is required")
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Detector == nil {
		config.Detector = platform.NewDetector()
	}
	if config.Fs == nil {
		config.Fs = afero.NewOsFs()
	}
	if config.Out == nil {
		config.Out = io.Discard
	}
	if config.Logger == nil {
		config.Logger = logging.Nop()
	}

	downloader := NewDownloader(config.HTTPClient, config.Fs, config.Logger)
	downloader.progress = config.Progress

	manager := &Manager{
		workDir:    config.WorkDir,
		baseURL:    config.BaseURL,
		fs:         config.Fs,
		out:        config.Out,
		logger:     config.Logger,
		detector:   config.Detector,
		downloader: downloader,
		extractor:  NewExtractor(config.Fs, config.Logger),
	}

	return manager, nil
}

// Install runs every step once, in order. The first failing step ends the
// run; earlier steps are not undone, so a failed rename leaves the archive
// and the extracted entries in WorkDir.
func (m *Manager) Install(ctx context.Context) (*InstallResult, error) {
	startTime := time.Now()

	// 1. Detect platform
	info, err := m.detector.Detect(ctx)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("detected platform",
		"os", info.OS, "arch", info.ArchRaw, "tag", info.Tag,
		"distro", info.Platform, "family", info.Family, "version", info.Version)

	artifact, err := NewArtifact(m.baseURL, info.Tag)
	if err != nil {
		return nil, errors.Wrap(err, "construct artifact")
	}

	// 2. Download the archive
	m.printf("Downloading %s\n", artifact.URL)
	download, err := m.downloader.Download(ctx, artifact.URL, m.workDir)
	if err != nil {
		return nil, err
	}

	// 3. Extract it next to itself
	m.printf("Extracting %s\n", artifact.ArchiveName)
	archivePath := filepath.Join(m.workDir, artifact.ArchiveName)
	entries, err := m.extractor.ExtractTarGz(archivePath, m.workDir)
	if err != nil {
		return nil, err
	}

	// 4. Rename the binary
	m.printf("Renaming %s to %s\n", artifact.ExtractedName, artifact.CanonicalName)
	installedPath, err := m.rename(artifact)
	if err != nil {
		return nil, err
	}

	// 5. Remove the archive
	m.printf("Removing %s\n", artifact.ArchiveName)
	if err := m.fs.Remove(archivePath); err != nil {
		return nil, newError(KindCleanupFailed, archivePath, errors.Wrap(err, "remove archive"))
	}

	executable, err := m.isExecutable(installedPath)
	if err != nil {
		m.logger.Warn("could not inspect installed binary", "path", installedPath, "error", err)
	}

	m.printf("Operation completed successfully\n")

	result := &InstallResult{
		Platform:   info,
		Artifact:   artifact,
		Path:       installedPath,
		Bytes:      download.Bytes,
		Entries:    entries,
		Executable: executable,
		Duration:   time.Since(startTime),
	}
	m.logger.Info("installed binary",
		"path", result.Path,
		"executable", result.Executable,
		"duration", result.Duration.Round(time.Millisecond))

	return result, nil
}

// rename moves the extracted binary to its canonical name. The destination
// is replaced if it is a file; the platform's rename semantics decide what
// happens for anything else.
func (m *Manager) rename(artifact Artifact) (string, error) {
	src := filepath.Join(m.workDir, artifact.ExtractedName)
	dst := filepath.Join(m.workDir, artifact.CanonicalName)

	installed, err := m.IsInstalled()
	if err != nil {
		m.logger.Warn("could not check for an existing binary", "path", dst, "error", err)
	} else if installed {
		m.logger.Warn("replacing existing binary", "path", dst)
	}

	if _, err := m.fs.Stat(src); err != nil {
		return "", newError(KindRenameFailed, src,
			errors.Wrapf(err, "archive did not contain %s", artifact.ExtractedName))
	}

	if err := m.fs.Rename(src, dst); err != nil {
		return "", newError(KindRenameFailed, src, errors.Wrap(err, "rename binary"))
	}

	return dst, nil
}

// IsInstalled checks if the canonical binary already exists in WorkDir
func (m *Manager) IsInstalled() (bool, error) {
	info, err := m.fs.Stat(m.BinaryPath())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "stat binary")
	}

	// Check if it's a regular file
	return info.Mode().IsRegular(), nil
}

// BinaryPath returns the filesystem path of the installed binary
func (m *Manager) BinaryPath() string {
	return filepath.Join(m.workDir, BinaryName)
}

func (m *Manager) isExecutable(path string) (bool, error) {
	info, err := m.fs.Stat(path)
	if err != nil {
		return false, errors.Wrap(err, "stat binary")
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0111 != 0, nil
}

func (m *Manager) printf(format string, args ...interface{}) {
	fmt.Fprintf(m.out, format, args...)
}
