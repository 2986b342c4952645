package binary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"

	"github.com/customeros/mailsherpa-installer/internal/logging"
)

// HTTPClient is the transport capability the downloader needs.
// *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Downloader fetches a URL into a directory, naming the file after the last
// URL path segment. There is exactly one attempt per call.
type Downloader struct {
	client   HTTPClient
	fs       afero.Fs
	logger   logging.Logger
	progress io.Writer // nil disables the progress bar
}

// NewDownloader creates a new downloader. A nil client gets an http.Client
// without a timeout, so a request runs until the transport gives up.
func NewDownloader(client HTTPClient, fs afero.Fs, logger logging.Logger) *Downloader {
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Allow up to 10 redirects
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Downloader{
		client: client,
		fs:     fs,
		logger: logger,
	}
}

// Download fetches rawURL into dir. An existing file of the same name is
// replaced. Every failure is an *Error of KindDownloadFailed.
func (d *Downloader) Download(ctx context.Context, rawURL, dir string) (*DownloadResult, error) {
	startTime := time.Now()

	filename, err := filenameFromURL(rawURL)
	if err != nil {
		return nil, newError(KindDownloadFailed, rawURL, err)
	}
	destPath := filepath.Join(dir, filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, newError(KindDownloadFailed, rawURL, errors.Wrap(err, "create request"))
	}

	d.logger.Debug("requesting archive", "url", rawURL)
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, newError(KindDownloadFailed, rawURL, errors.Wrap(err, "execute request"))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(KindDownloadFailed, rawURL,
			errors.Errorf("unexpected status %s from %s", resp.Status, rawURL))
	}

	written, err := d.writeFile(destPath, resp)
	if err != nil {
		return nil, newError(KindDownloadFailed, rawURL, err)
	}

	result := &DownloadResult{
		URL:          rawURL,
		Path:         destPath,
		Bytes:        written,
		DownloadTime: time.Since(startTime),
	}
	d.logger.Info("downloaded archive",
		"path", destPath,
		"size", humanize.Bytes(uint64(written)),
		"duration", result.DownloadTime.Round(time.Millisecond))

	return result, nil
}

// writeFile streams the response body into destPath through a uniquely named
// temporary file in the same directory, so a failed transfer never leaves a
// truncated file under the final name and never touches other files.
func (d *Downloader) writeFile(destPath string, resp *http.Response) (int64, error) {
	tmpFile, err := afero.TempFile(d.fs, filepath.Dir(destPath), filepath.Base(destPath)+".*.tmp")
	if err != nil {
		return 0, errors.Wrap(err, "create temp file")
	}
	tmpPath := tmpFile.Name()

	// Track whether we need to clean up the temp file
	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			d.fs.Remove(tmpPath)
		}
	}()

	var dst io.Writer = tmpFile
	var bar *progressbar.ProgressBar
	if d.progress != nil {
		bar = newProgressBar(d.progress, resp.ContentLength, filepath.Base(destPath))
		dst = io.MultiWriter(tmpFile, bar)
	}

	written, err := io.Copy(dst, resp.Body)
	if err != nil {
		return 0, errors.Wrap(err, "copy response body")
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if err := tmpFile.Close(); err != nil {
		return 0, errors.Wrap(err, "close temp file")
	}
	if err := d.fs.Chmod(tmpPath, 0644); err != nil {
		return 0, errors.Wrap(err, "chmod temp file")
	}

	if err := d.fs.Rename(tmpPath, destPath); err != nil {
		return 0, errors.Wrap(err, "rename temp file")
	}

	cleanupNeeded = false
	return written, nil
}

func newProgressBar(w io.Writer, size int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
	)
}

// filenameFromURL returns the last path segment of rawURL
func filenameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(err, "parse url")
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.Errorf("url %q is not absolute", rawURL)
	}

	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", errors.Errorf("url %q has no file name", rawURL)
	}
	return name, nil
}
