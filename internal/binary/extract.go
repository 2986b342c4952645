package binary

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/customeros/mailsherpa-installer/internal/logging"
)

// Extractor handles archive extraction
type Extractor struct {
	fs     afero.Fs
	logger logging.Logger
}

// NewExtractor creates a new extractor
func NewExtractor(fs afero.Fs, logger logging.Logger) *Extractor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Extractor{fs: fs, logger: logger}
}

// ExtractTarGz extracts every entry of a .tar.gz archive into destDir,
// keeping the stored paths and modes, and returns the entry names in archive
// order.
//
// Entry names are joined to destDir as-is. Names containing ".." can write
// outside destDir; the archive is trusted because it comes from a single
// fixed origin.
//
// An archive without a single entry is an error.
//
// If extraction fails, entries this call created are removed again so a
// corrupt archive leaves the directory as it was. Files that existed before
// and were overwritten are not restored.
func (e *Extractor) ExtractTarGz(archivePath, destDir string) ([]string, error) {
	archiveFile, err := e.fs.Open(archivePath)
	if err != nil {
		return nil, newError(KindExtractionFailed, archivePath, errors.Wrap(err, "open archive"))
	}
	defer archiveFile.Close()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return nil, newError(KindExtractionFailed, archivePath, errors.Wrap(err, "create gzip reader"))
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)

	var entries, created []string
	headers := 0
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			if headers == 0 {
				return nil, newError(KindExtractionFailed, archivePath, errors.New("empty archive"))
			}
			break
		}
		headers++
		if err == nil {
			var made []string
			made, err = e.extractEntry(tarReader, header, destDir)
			created = append(created, made...)
			if err == nil {
				entries = append(entries, header.Name)
				continue
			}
		} else {
			err = errors.Wrap(err, "read tar header")
		}

		e.rollback(created)
		return nil, newError(KindExtractionFailed, archivePath, err)
	}

	e.logger.Debug("extracted archive", "archive", archivePath, "entries", len(entries))
	return entries, nil
}

// extractEntry writes one archive entry and returns every path it brought
// into existence, outermost first, including on failure.
func (e *Extractor) extractEntry(tr *tar.Reader, header *tar.Header, destDir string) ([]string, error) {
	target := filepath.Join(destDir, header.Name)
	mode := header.FileInfo().Mode().Perm()

	switch header.Typeflag {
	case tar.TypeDir:
		created, err := e.mkdirAll(target)
		if err != nil {
			return created, errors.Wrapf(err, "create directory %s", target)
		}
		if err := e.fs.Chmod(target, mode); err != nil {
			return created, errors.Wrapf(err, "chmod %s", target)
		}
		return created, nil

	case tar.TypeReg:
		created, err := e.mkdirAll(filepath.Dir(target))
		if err != nil {
			return created, errors.Wrapf(err, "create parent dir for %s", target)
		}
		created = e.appendIfMissing(created, target)
		return created, e.writeFile(target, tr, mode)

	case tar.TypeLink:
		// Hard links are materialized as copies of the already extracted target.
		source, err := e.fs.Open(filepath.Join(destDir, header.Linkname))
		if err != nil {
			return nil, errors.Wrapf(err, "open link target %s", header.Linkname)
		}
		defer source.Close()
		created, err := e.mkdirAll(filepath.Dir(target))
		if err != nil {
			return created, errors.Wrapf(err, "create parent dir for %s", target)
		}
		created = e.appendIfMissing(created, target)
		return created, e.writeFile(target, source, mode)

	case tar.TypeSymlink:
		linker, ok := e.fs.(afero.Linker)
		if !ok {
			return nil, errors.Errorf("create symlink %s: filesystem does not support symlinks", target)
		}
		created, err := e.mkdirAll(filepath.Dir(target))
		if err != nil {
			return created, errors.Wrapf(err, "create parent dir for %s", target)
		}
		created = e.appendIfMissing(created, target)
		if err := e.fs.Remove(target); err != nil && !os.IsNotExist(err) {
			return created, errors.Wrapf(err, "replace %s", target)
		}
		if err := linker.SymlinkIfPossible(header.Linkname, target); err != nil {
			return created, errors.Wrapf(err, "create symlink %s", target)
		}
		return created, nil

	default:
		// Skip other types (char devices, block devices, fifos)
		e.logger.Debug("skipping archive entry", "name", header.Name, "type", string(header.Typeflag))
		return nil, nil
	}
}

// mkdirAll creates dir and any missing parents and returns the directories
// that did not exist before, outermost first.
func (e *Extractor) mkdirAll(dir string) ([]string, error) {
	var missing []string
	for p := dir; ; p = filepath.Dir(p) {
		if _, err := e.fs.Stat(p); !os.IsNotExist(err) {
			break
		}
		missing = append(missing, p)
		if filepath.Dir(p) == p {
			break
		}
	}

	for i, j := 0, len(missing)-1; i < j; i, j = i+1, j-1 {
		missing[i], missing[j] = missing[j], missing[i]
	}

	return missing, e.fs.MkdirAll(dir, 0755)
}

func (e *Extractor) appendIfMissing(created []string, path string) []string {
	if _, err := e.fs.Stat(path); os.IsNotExist(err) {
		return append(created, path)
	}
	return created
}

func (e *Extractor) writeFile(target string, r io.Reader, mode os.FileMode) error {
	outFile, err := e.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return errors.Wrapf(err, "create file %s", target)
	}

	if _, err := io.Copy(outFile, r); err != nil {
		outFile.Close()
		return errors.Wrapf(err, "write file %s", target)
	}

	if err := outFile.Close(); err != nil {
		return errors.Wrapf(err, "close file %s", target)
	}

	// OpenFile is subject to the umask; apply the stored mode explicitly.
	if err := e.fs.Chmod(target, mode); err != nil {
		return errors.Wrapf(err, "chmod %s", target)
	}
	return nil
}

// rollback removes paths created by a failed extraction, newest first.
func (e *Extractor) rollback(created []string) {
	for i := len(created) - 1; i >= 0; i-- {
		if err := e.fs.RemoveAll(created[i]); err != nil {
			e.logger.Warn("could not remove partially extracted entry", "path", created[i], "error", err)
		}
	}
}
