// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DatabaseName is the SQLite file kept under the root directory.
	DatabaseName = "photos.db"
	// PhotosDir is the photo library directory kept under the root directory.
	PhotosDir = "files"
)

type Config struct {
	// RootPath holds the database and the photo library.
	RootPath string

	ListenAddr string

	// OutputName is the wlr-randr display output driven by the frame.
	OutputName string
	// BacklightDevice is passed to brightnessctl when set.
	BacklightDevice string

	RescanInterval time.Duration

	// Remote album sync is enabled when S3Bucket is non-empty.
	S3Bucket   string
	AWSProfile string
	S3Album    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	rootPath := os.Getenv("SNEKFRAME_ROOT")
	if rootPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("unable to determine home directory for default root: %w", err)
		}
		rootPath = filepath.Join(home, ".snekframe")
	}

	rescanHours := 24
	if v := os.Getenv("SNEKFRAME_RESCAN_HOURS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("invalid SNEKFRAME_RESCAN_HOURS %q", v)
		}
		rescanHours = parsed
	}

	return &Config{
		RootPath:        rootPath,
		ListenAddr:      getEnv("SNEKFRAME_LISTEN", "0.0.0.0:8080"),
		OutputName:      getEnv("SNEKFRAME_OUTPUT", "HDMI-A-1"),
		BacklightDevice: os.Getenv("SNEKFRAME_BACKLIGHT"),
		RescanInterval:  time.Duration(rescanHours) * time.Hour,
		S3Bucket:        os.Getenv("SNEKFRAME_S3_BUCKET"),
		AWSProfile:      os.Getenv("SNEKFRAME_AWS_PROFILE"),
		S3Album:         getEnv("SNEKFRAME_S3_ALBUM", "shared"),
	}, nil
}

// DatabasePath is the location of the persistent SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.RootPath, DatabaseName)
}

// PhotosPath is the root of the photo library. Each subdirectory is an album.
func (c *Config) PhotosPath() string {
	return filepath.Join(c.RootPath, PhotosDir)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
