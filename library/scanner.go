// Package library tracks the on-disk photo library and keeps the database
// in sync with it.
package library

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/matthewar/snekframe/store"
	"github.com/matthewar/snekframe/util"
)

// Scanner walks the photo library, verifies candidate files decode as
// images, and reconciles the result with the database.
type Scanner struct {
	path     string
	db       *store.Database
	interval time.Duration

	mu           sync.Mutex
	trackedFiles mapset.Set[string]

	Updated chan bool
}

func NewScanner(db *store.Database, path string, interval time.Duration) *Scanner {
	return &Scanner{
		path:         path,
		db:           db,
		interval:     interval,
		trackedFiles: mapset.NewSet[string](),
		Updated:      make(chan bool, 1),
	}
}

// Scan performs one synchronous library scan and reports how many photos
// were registered and deregistered.
func (s *Scanner) Scan() (added, removed int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.path, 0o755); err != nil {
		return 0, 0, fmt.Errorf("failed to create photos directory: %w", err)
	}

	entries, err := os.ReadDir(s.path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read photos directory: %w", err)
	}

	var found []store.ScannedPhoto
	currentFiles := mapset.NewSet[string]()

	for _, entry := range entries {
		if !entry.IsDir() {
			// Photos must live inside an album directory
			slog.Warn("found potential photo without album", "name", entry.Name())
			continue
		}
		album := entry.Name()

		albumEntries, err := os.ReadDir(filepath.Join(s.path, album))
		if err != nil {
			slog.Warn("error reading album directory", "album", album, "error", err)
			continue
		}

		for _, albumEntry := range albumEntries {
			name := albumEntry.Name()
			if albumEntry.IsDir() {
				slog.Warn("ignoring directory inside album", "album", album, "name", name)
				continue
			}
			if !util.IsSupportedPhoto(name) {
				continue
			}
			if !verifyImage(filepath.Join(s.path, album, name)) {
				continue
			}

			found = append(found, store.ScannedPhoto{Album: album, Filename: name})
			currentFiles.Add(filepath.Join(album, name))
		}
	}

	newFiles := currentFiles.Difference(s.trackedFiles)
	lostFiles := s.trackedFiles.Difference(currentFiles)
	for _, name := range newFiles.ToSlice() {
		slog.Info("found new photo", "path", name)
	}
	for _, name := range lostFiles.ToSlice() {
		slog.Info("photo no longer present", "path", name)
	}
	s.trackedFiles = currentFiles

	added, removed, err = s.db.ApplyScan(found)
	if err != nil {
		return 0, 0, err
	}
	return added, removed, nil
}

// Rescan scans and signals the update channel when the library changed.
func (s *Scanner) Rescan() (added, removed int, err error) {
	added, removed, err = s.Scan()
	if err != nil {
		return 0, 0, err
	}

	if added > 0 || removed > 0 {
		select {
		case s.Updated <- true:
		default:
			// Channel is full, skip
		}
	}
	return added, removed, nil
}

func (s *Scanner) Run() {
	ticker := time.NewTicker(s.interval)

	// Initial scan
	if _, _, err := s.Rescan(); err != nil {
		slog.Warn("error scanning photo library", "path", s.path, "error", err)
	}

	for range ticker.C {
		if _, _, err := s.Rescan(); err != nil {
			slog.Warn("error scanning photo library", "path", s.path, "error", err)
		}
	}
}

// verifyImage checks that the file header decodes with the decoder implied
// by its extension. Truncated or mislabeled files are skipped rather than
// handed to the viewer.
func verifyImage(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("unable to open photo for verification", "path", path, "error", err)
		return false
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		_, err = jpeg.DecodeConfig(f)
	case ".png":
		_, err = png.DecodeConfig(f)
	default:
		return false
	}
	if err != nil {
		slog.Warn("file failed image verification", "path", path, "error", err)
		return false
	}
	return true
}
