package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SNEKFRAME_ROOT", "/data/frame")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/frame", cfg.RootPath)
	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr)
	assert.Equal(t, "HDMI-A-1", cfg.OutputName)
	assert.Empty(t, cfg.BacklightDevice)
	assert.Equal(t, 24*time.Hour, cfg.RescanInterval)
	assert.Empty(t, cfg.S3Bucket)
	assert.Equal(t, "shared", cfg.S3Album)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SNEKFRAME_ROOT", "/data/frame")
	t.Setenv("SNEKFRAME_LISTEN", "127.0.0.1:9000")
	t.Setenv("SNEKFRAME_OUTPUT", "DSI-1")
	t.Setenv("SNEKFRAME_BACKLIGHT", "10-0045")
	t.Setenv("SNEKFRAME_RESCAN_HOURS", "6")
	t.Setenv("SNEKFRAME_S3_BUCKET", "frame-photos")
	t.Setenv("SNEKFRAME_AWS_PROFILE", "frame")
	t.Setenv("SNEKFRAME_S3_ALBUM", "grandma")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, "DSI-1", cfg.OutputName)
	assert.Equal(t, "10-0045", cfg.BacklightDevice)
	assert.Equal(t, 6*time.Hour, cfg.RescanInterval)
	assert.Equal(t, "frame-photos", cfg.S3Bucket)
	assert.Equal(t, "frame", cfg.AWSProfile)
	assert.Equal(t, "grandma", cfg.S3Album)
}

func TestLoadInvalidRescanHours(t *testing.T) {
	t.Setenv("SNEKFRAME_ROOT", "/data/frame")
	t.Setenv("SNEKFRAME_RESCAN_HOURS", "zero")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SNEKFRAME_RESCAN_HOURS", "0")
	_, err = Load()
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	cfg := &Config{RootPath: "/data/frame"}

	assert.Equal(t, filepath.Join("/data/frame", "photos.db"), cfg.DatabasePath())
	assert.Equal(t, filepath.Join("/data/frame", "files"), cfg.PhotosPath())
}
