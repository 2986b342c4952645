package platform

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealDetector_Detect(t *testing.T) {
	info, err := NewDetector().Detect(context.Background())

	switch runtime.GOOS {
	case "darwin":
		require.NoError(t, err)
		assert.Equal(t, TagMacOS, info.Tag)
	case "linux":
		var unsupported *UnsupportedError
		if errors.As(err, &unsupported) {
			t.Skipf("linux machine %q has no release archive", unsupported.Arch)
		}
		require.NoError(t, err)
		assert.True(t, info.IsLinux())
		assert.NotEmpty(t, info.ArchRaw)
		assert.Contains(t, []Tag{TagLinuxARM64, TagLinuxAMD64}, info.Tag)
		if info.Platform != "" {
			assert.NotEmpty(t, info.Family, "family should be set when platform is set")
		}
	default:
		var unsupported *UnsupportedError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, runtime.GOOS, unsupported.OS)
	}
}

func TestRealDetector_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDetector().Detect(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStaticDetector(t *testing.T) {
	tests := []struct {
		name    string
		os      string
		arch    string
		want    Tag
		wantErr bool
	}{
		{"macos", "Darwin", "arm64", TagMacOS, false},
		{"linux arm", "Linux", "aarch64", TagLinuxARM64, false},
		{"linux amd", "Linux", "x86_64", TagLinuxAMD64, false},
		{"windows", "Windows", "AMD64", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := StaticDetector{OS: tt.os, Arch: tt.arch}.Detect(context.Background())
			if tt.wantErr {
				var unsupported *UnsupportedError
				require.True(t, errors.As(err, &unsupported))
				assert.Nil(t, info)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.Tag)
			assert.Equal(t, tt.os, info.OS)
			assert.Equal(t, tt.arch, info.ArchRaw)
		})
	}
}

func TestInfoHelpers(t *testing.T) {
	mac := &Info{OS: "Darwin"}
	assert.True(t, mac.IsMacOS())
	assert.False(t, mac.IsLinux())

	linux := &Info{OS: "linux"}
	assert.True(t, linux.IsLinux())
	assert.False(t, linux.IsMacOS())
}
