package slideshow

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewar/snekframe/store"
)

type fakeCommand struct {
	name string
	args []string
}

func newTestManager(t *testing.T) (*Manager, *store.Database, *[]fakeCommand, *[]fakeCommand) {
	t.Helper()

	root := t.TempDir()
	db, err := store.NewDatabase(filepath.Join(root, "photos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := NewManager(db, filepath.Join(root, "files"))

	var ran, started []fakeCommand
	m.runCommand = func(name string, args ...string) error {
		ran = append(ran, fakeCommand{name: name, args: args})
		return nil
	}
	m.startCommand = func(name string, args ...string) error {
		started = append(started, fakeCommand{name: name, args: args})
		return nil
	}
	return m, db, &ran, &started
}

func insertSelected(t *testing.T, db *store.Database, album, filename string) {
	t.Helper()

	id, err := db.InsertPhoto(filename, album)
	require.NoError(t, err)
	require.NoError(t, db.SetPhotoSelected(id, true))
}

func TestRestartStartsViewerWithOrderedPlaylist(t *testing.T) {
	m, db, ran, started := newTestManager(t)

	insertSelected(t, db, "holiday", "b.jpg")
	insertSelected(t, db, "holiday", "a.jpg")
	insertSelected(t, db, "family", "c.jpg")

	require.NoError(t, m.Restart(nil))
	assert.True(t, m.Running())

	require.Len(t, *ran, 1)
	assert.Equal(t, "pkill", (*ran)[0].name)
	assert.Equal(t, []string{"imv-wayland"}, (*ran)[0].args)

	require.Len(t, *started, 1)
	cmd := (*started)[0]
	assert.Equal(t, "/usr/bin/imv-wayland", cmd.name)
	require.True(t, len(cmd.args) >= 5)
	assert.Equal(t, []string{"-f", "-s", "full", "-t", "10"}, cmd.args[:5])

	paths := cmd.args[5:]
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(m.photosPath, "family", "c.jpg"), paths[0])
	assert.Equal(t, filepath.Join(m.photosPath, "holiday", "a.jpg"), paths[1])
	assert.Equal(t, filepath.Join(m.photosPath, "holiday", "b.jpg"), paths[2])
}

func TestRestartUsesConfiguredInterval(t *testing.T) {
	m, db, _, started := newTestManager(t)

	insertSelected(t, db, "holiday", "a.jpg")

	settings, err := db.GetSettings()
	require.NoError(t, err)
	settings.TransitionSeconds = 42
	require.NoError(t, db.UpsertSettings(settings))

	require.NoError(t, m.Restart(nil))
	require.Len(t, *started, 1)
	assert.Equal(t, "42", (*started)[0].args[4])
}

func TestRestartFromPhotoRotatesPlaylist(t *testing.T) {
	m, db, _, started := newTestManager(t)

	insertSelected(t, db, "holiday", "a.jpg")
	insertSelected(t, db, "holiday", "b.jpg")
	insertSelected(t, db, "holiday", "c.jpg")

	from, err := db.GetPhotoByPath("holiday", "b.jpg")
	require.NoError(t, err)

	require.NoError(t, m.Restart(from))
	require.Len(t, *started, 1)

	paths := (*started)[0].args[5:]
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(m.photosPath, "holiday", "b.jpg"), paths[0])
	assert.Equal(t, filepath.Join(m.photosPath, "holiday", "c.jpg"), paths[1])
	assert.Equal(t, filepath.Join(m.photosPath, "holiday", "a.jpg"), paths[2])
}

func TestRestartShuffleKeepsAllPhotos(t *testing.T) {
	m, db, _, started := newTestManager(t)

	insertSelected(t, db, "holiday", "a.jpg")
	insertSelected(t, db, "holiday", "b.jpg")
	insertSelected(t, db, "family", "c.jpg")

	settings, err := db.GetSettings()
	require.NoError(t, err)
	settings.ShuffleEnabled = true
	require.NoError(t, db.UpsertSettings(settings))

	require.NoError(t, m.Restart(nil))
	require.Len(t, *started, 1)

	paths := (*started)[0].args[5:]
	assert.ElementsMatch(t, []string{
		filepath.Join(m.photosPath, "holiday", "a.jpg"),
		filepath.Join(m.photosPath, "holiday", "b.jpg"),
		filepath.Join(m.photosPath, "family", "c.jpg"),
	}, paths)
}

func TestRestartWithoutSelectionStopsViewer(t *testing.T) {
	m, db, ran, started := newTestManager(t)

	// Registered but never selected.
	_, err := db.InsertPhoto("a.jpg", "holiday")
	require.NoError(t, err)

	require.NoError(t, m.Restart(nil))
	assert.False(t, m.Running())
	assert.Empty(t, *started)

	// The old viewer is still killed.
	require.Len(t, *ran, 1)
	assert.Equal(t, "pkill", (*ran)[0].name)
}

func TestStop(t *testing.T) {
	m, db, ran, _ := newTestManager(t)

	insertSelected(t, db, "holiday", "a.jpg")
	require.NoError(t, m.Restart(nil))
	require.True(t, m.Running())

	m.Stop()
	assert.False(t, m.Running())
	assert.Equal(t, "pkill", (*ran)[len(*ran)-1].name)
}
