// Package slideshow manages the starting and stopping of the slideshow imv app
package slideshow

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/matthewar/snekframe/store"
)

const defaultInterval = 10

// Manager owns the imv-wayland process lifecycle. Restarts are serialized
// so that concurrent triggers never leave two viewers running.
type Manager struct {
	db         *store.Database
	photosPath string

	mu      sync.Mutex
	running bool

	// Command hooks, replaceable in tests
	runCommand   func(name string, args ...string) error
	startCommand func(name string, args ...string) error
}

func NewManager(db *store.Database, photosPath string) *Manager {
	return NewManagerWithCommands(db, photosPath,
		func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
		func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	)
}

// NewManagerWithCommands builds a Manager whose process control goes
// through the given run and start functions instead of exec.
func NewManagerWithCommands(db *store.Database, photosPath string, run, start func(name string, args ...string) error) *Manager {
	return &Manager{
		db:           db,
		photosPath:   photosPath,
		runCommand:   run,
		startCommand: start,
	}
}

// Running reports whether the viewer was started and not since stopped.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Restart stops any running viewer and starts a fresh one over the current
// selection. When fromPhoto is non-nil the playlist is rotated so that
// photo plays first.
func (m *Manager) Restart(fromPhoto *store.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings, err := m.db.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	playlist, err := m.buildPlaylist(settings.ShuffleEnabled, fromPhoto)
	if err != nil {
		return err
	}
	if len(playlist) == 0 {
		m.stopLocked()
		slog.Info("no photos selected, slideshow stopped")
		return nil
	}

	m.stopLocked()

	interval := settings.TransitionSeconds
	if interval <= 0 {
		interval = defaultInterval
	}

	args := []string{"-f", "-s", "full", "-t", strconv.Itoa(interval)}
	args = append(args, playlist...)

	if err := m.startCommand("/usr/bin/imv-wayland", args...); err != nil {
		return fmt.Errorf("failed to start imv-wayland: %w", err)
	}
	m.running = true

	slog.Info("started imv-wayland slideshow", "photos", len(playlist), "interval", interval)
	return nil
}

// Stop kills any running viewer.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if err := m.runCommand("pkill", "imv-wayland"); err != nil {
		// pkill returns error if no process found, which is fine
		slog.Debug("imv-wayland not running or already killed", "error", err)
	}
	m.running = false
}

// buildPlaylist returns the selected photos as absolute viewer paths in
// album/filename order, shuffled when requested.
func (m *Manager) buildPlaylist(shuffle bool, fromPhoto *store.Photo) ([]string, error) {
	photos, err := m.db.SelectedPhotos()
	if err != nil {
		return nil, fmt.Errorf("failed to load selected photos: %w", err)
	}

	if shuffle {
		rand.Shuffle(len(photos), func(i, j int) {
			photos[i], photos[j] = photos[j], photos[i]
		})
	}

	if fromPhoto != nil {
		for i, p := range photos {
			if p.Album == fromPhoto.Album && p.Filename == fromPhoto.Filename {
				photos = append(photos[i:], photos[:i]...)
				break
			}
		}
	}

	paths := make([]string, 0, len(photos))
	for _, p := range photos {
		paths = append(paths, filepath.Join(m.photosPath, p.Album, p.Filename))
	}
	return paths, nil
}
