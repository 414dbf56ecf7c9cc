package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsUploadPolicy(t *testing.T) {
	cfg := Load()

	require.Equal(t, 5, cfg.UploadMaxCount)
	require.Equal(t, int64(10*1024*1024), cfg.UploadMaxBytes)
	require.Equal(t, []string{"jpg", "jpeg", "png", "gif", "tiff", "tif", "raw"}, cfg.UploadAllowedExts)
}

func TestLoadOverridesUploadPolicy(t *testing.T) {
	t.Setenv("UPLOAD_MAX_COUNT", "3")
	t.Setenv("UPLOAD_MAX_BYTES", "1048576")
	t.Setenv("UPLOAD_ALLOWED_EXTS", "png, webp")

	cfg := Load()
	require.Equal(t, 3, cfg.UploadMaxCount)
	require.Equal(t, int64(1048576), cfg.UploadMaxBytes)
	require.Equal(t, []string{"png", "webp"}, cfg.UploadAllowedExts)
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("UPLOAD_MAX_COUNT", "lots")

	cfg := Load()
	require.Equal(t, 5, cfg.UploadMaxCount)
}
