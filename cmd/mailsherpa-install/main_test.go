package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailsherpa-installer/internal/logging"
	"github.com/customeros/mailsherpa-installer/internal/platform"
	"github.com/customeros/mailsherpa-installer/internal/testutil"
)

func newServer(t *testing.T, name string, archive []byte) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/"+name {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(archive)
	}))
	t.Cleanup(server.Close)
	return server
}

func runInstaller(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunInstallsBinary(t *testing.T) {
	dir := testutil.SetupTestEnv(t)
	server := newServer(t, "mailsherpa-macos.tar.gz",
		testutil.TarGz(t, testutil.File("mailsherpa-macos", "binary")))

	code, stdout, stderr := runInstaller(t, "--base-url", server.URL, "--os", "Darwin", "--arch", "arm64")
	require.Equal(t, 0, code, stdout)

	want := "Downloading " + server.URL + "/mailsherpa-macos.tar.gz\n" +
		"Extracting mailsherpa-macos.tar.gz\n" +
		"Renaming mailsherpa-macos to mailsherpa\n" +
		"Removing mailsherpa-macos.tar.gz\n" +
		"Operation completed successfully\n"
	assert.Equal(t, want, stdout)
	assert.Empty(t, stderr)

	content, err := os.ReadFile(filepath.Join(dir, "mailsherpa"))
	require.NoError(t, err)
	assert.Equal(t, "binary", string(content))

	_, err = os.Stat(filepath.Join(dir, "mailsherpa-macos.tar.gz"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name     string
		archive  string
		entries  []testutil.Entry
		raw      []byte
		args     []string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "unsupported_platform",
			args:     []string{"--os", "Windows", "--arch", "AMD64"},
			wantCode: 2,
			wantMsg:  "unsupported platform: windows amd64",
		},
		{
			name:     "linux_i686",
			args:     []string{"--os", "Linux", "--arch", "i686"},
			wantCode: 2,
			wantMsg:  "unsupported platform: linux i686",
		},
		{
			name:     "download_failed",
			archive:  "something-else.tar.gz",
			raw:      []byte("x"),
			args:     []string{"--os", "Linux", "--arch", "x86_64"},
			wantCode: 3,
			wantMsg:  "download failed",
		},
		{
			name:     "extraction_failed",
			archive:  "mailsherpa-linux-amd64.tar.gz",
			raw:      []byte("not an archive"),
			args:     []string{"--os", "Linux", "--arch", "x86_64"},
			wantCode: 4,
			wantMsg:  "extraction failed",
		},
		{
			name:     "rename_failed",
			archive:  "mailsherpa-linux-arm64.tar.gz",
			entries:  []testutil.Entry{testutil.File("mailsherpa", "misnamed")},
			args:     []string{"--os", "Linux", "--arch", "aarch64"},
			wantCode: 5,
			wantMsg:  "rename failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.SetupTestEnv(t)

			data := tt.raw
			if tt.entries != nil {
				data = testutil.TarGz(t, tt.entries...)
			}
			server := newServer(t, tt.archive, data)

			args := append([]string{"--base-url", server.URL}, tt.args...)
			code, stdout, _ := runInstaller(t, args...)
			assert.Equal(t, tt.wantCode, code)

			lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
			last := lines[len(lines)-1]
			assert.True(t, strings.HasPrefix(last, "An error occurred: "), stdout)
			assert.Contains(t, last, tt.wantMsg)
			assert.Equal(t, 1, strings.Count(stdout, "An error occurred"))
			assert.NotContains(t, stdout, "Operation completed successfully")
		})
	}
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := runInstaller(t, "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, Version)
}

func TestRunRejectsArguments(t *testing.T) {
	testutil.SetupTestEnv(t)

	code, stdout, _ := runInstaller(t, "now")
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stdout, "An error occurred: "))
}

func TestRunVerboseLogsToStderr(t *testing.T) {
	testutil.SetupTestEnv(t)
	server := newServer(t, "mailsherpa-macos.tar.gz",
		testutil.TarGz(t, testutil.File("mailsherpa-macos", "binary")))

	code, stdout, stderr := runInstaller(t, "--verbose", "--base-url", server.URL, "--os", "darwin", "--arch", "x86_64")
	require.Equal(t, 0, code)
	assert.NotContains(t, stdout, "installed binary")
	assert.Contains(t, stderr, "installed binary")
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name string
		opts options
		want string
	}{
		{"default", options{}, logging.LevelError},
		{"verbose", options{verbose: true}, logging.LevelInfo},
		{"debug", options{debug: true}, logging.LevelDebug},
		{"debug_wins", options{verbose: true, debug: true}, logging.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logLevel(&tt.opts))
		})
	}
}

func TestDetectorOverride(t *testing.T) {
	_, isHost := detector(&options{}).(*platform.RealDetector)
	assert.True(t, isHost)

	info, err := detector(&options{osName: "Darwin"}).Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, platform.TagMacOS, info.Tag)

	info, err = detector(&options{osName: "Linux", arch: "armv7l"}).Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, platform.TagLinuxARM64, info.Tag)
}

func TestProgressWriterDisabledForBuffers(t *testing.T) {
	assert.Nil(t, progressWriter(&bytes.Buffer{}))
}

func TestRunDebugReportsDetectedPlatform(t *testing.T) {
	testutil.SetupTestEnv(t)
	server := newServer(t, "mailsherpa-linux-amd64.tar.gz",
		testutil.TarGz(t, testutil.File("mailsherpa-linux-amd64", "binary")))

	code, stdout, stderr := runInstaller(t, "--debug", "--base-url", server.URL, "--os", "Linux", "--arch", "x86_64")
	require.Equal(t, 0, code, stdout)
	assert.Contains(t, stderr, "detected platform")
	assert.Contains(t, stderr, "linux-amd64")

	usage := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{}).Flags().Lookup("debug").Usage
	assert.Contains(t, usage, "distribution")
}
