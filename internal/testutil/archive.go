package testutil

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/spf13/afero"
)

// Entry is one member of a fixture archive.
type Entry struct {
	Name     string
	Body     string
	Mode     int64 // defaults to 0755 for files and directories
	Typeflag byte  // defaults to tar.TypeReg
	Linkname string
}

// File returns a regular file entry with mode 0755.
func File(name, body string) Entry {
	return Entry{Name: name, Body: body}
}

// TarGz builds a gzip-compressed tar archive from entries, in order.
func TarGz(t testing.TB, entries ...Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzipWriter)

	for _, entry := range entries {
		header := &tar.Header{
			Name:     entry.Name,
			Mode:     entry.Mode,
			Typeflag: entry.Typeflag,
			Linkname: entry.Linkname,
		}
		if header.Typeflag == 0 {
			header.Typeflag = tar.TypeReg
		}
		if header.Mode == 0 {
			header.Mode = 0755
		}
		if header.Typeflag == tar.TypeReg {
			header.Size = int64(len(entry.Body))
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatalf("failed to write header for %s: %v", entry.Name, err)
		}
		if header.Size > 0 {
			if _, err := tarWriter.Write([]byte(entry.Body)); err != nil {
				t.Fatalf("failed to write content for %s: %v", entry.Name, err)
			}
		}
	}

	if err := tarWriter.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
	if err := gzipWriter.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}

	return buf.Bytes()
}

// Gzip compresses data without wrapping it in a tar stream.
func Gzip(t testing.TB, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if _, err := gzipWriter.Write(data); err != nil {
		t.Fatalf("failed to gzip data: %v", err)
	}
	if err := gzipWriter.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes data to path on fs, failing the test on error.
func WriteFile(t testing.TB, fs afero.Fs, path string, data []byte) {
	t.Helper()

	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
