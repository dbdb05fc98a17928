package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewar/snekframe/api/models"
	"github.com/matthewar/snekframe/config"
	"github.com/matthewar/snekframe/display"
	"github.com/matthewar/snekframe/library"
	"github.com/matthewar/snekframe/power"
	"github.com/matthewar/snekframe/slideshow"
	"github.com/matthewar/snekframe/store"
	"github.com/matthewar/snekframe/voltage"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// execLog records the viewer commands the slideshow manager would have run.
type execLog struct {
	ran     [][]string
	started [][]string
}

func newTestServer(t *testing.T) (*WebServer, *store.Database, *config.Config, *execLog) {
	t.Helper()

	cfg := &config.Config{
		RootPath:       t.TempDir(),
		ListenAddr:     "127.0.0.1:0",
		OutputName:     "HDMI-A-1",
		RescanInterval: time.Hour,
	}

	db, err := store.NewDatabase(cfg.DatabasePath())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cmds := &execLog{}
	slideshowManager := slideshow.NewManagerWithCommands(db, cfg.PhotosPath(),
		func(name string, args ...string) error {
			cmds.ran = append(cmds.ran, append([]string{name}, args...))
			return nil
		},
		func(name string, args ...string) error {
			cmds.started = append(cmds.started, append([]string{name}, args...))
			return nil
		},
	)

	scanner := library.NewScanner(db, cfg.PhotosPath(), cfg.RescanInterval)
	ws := NewWebServer(
		cfg,
		db,
		scanner,
		slideshowManager,
		display.NewController(cfg.OutputName, cfg.BacklightDevice),
		power.NewController(),
		voltage.NewMonitor(),
	)
	return ws, db, cfg, cmds
}

func doRequest(ws *WebServer, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	ws.router.ServeHTTP(w, req)
	return w
}

func TestListPhotos(t *testing.T) {
	ws, db, _, _ := newTestServer(t)

	w := doRequest(ws, "GET", "/library/photos", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.PhotoListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Total)

	_, err := db.InsertPhoto("a.jpg", "holiday")
	require.NoError(t, err)
	_, err = db.InsertPhoto("b.jpg", "family")
	require.NoError(t, err)

	w = doRequest(ws, "GET", "/library/photos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)

	w = doRequest(ws, "GET", "/library/photos?album=family", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "b.jpg", resp.Photos[0].Filename)
}

func TestSelectPhoto(t *testing.T) {
	ws, db, _, _ := newTestServer(t)

	id, err := db.InsertPhoto("a.jpg", "holiday")
	require.NoError(t, err)

	w := doRequest(ws, "PUT", "/library/photos/1/selected", models.SelectionRequest{Selected: boolPtr(true)})
	require.Equal(t, http.StatusOK, w.Code)

	photo, err := db.GetPhoto(id)
	require.NoError(t, err)
	assert.True(t, photo.Selected)

	w = doRequest(ws, "PUT", "/library/photos/abc/selected", models.SelectionRequest{Selected: boolPtr(true)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(ws, "PUT", "/library/photos/999/selected", models.SelectionRequest{Selected: boolPtr(true)})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(ws, "PUT", "/library/photos/1/selected", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectAlbum(t *testing.T) {
	ws, db, _, _ := newTestServer(t)

	_, err := db.InsertPhoto("a.jpg", "holiday")
	require.NoError(t, err)
	_, err = db.InsertPhoto("b.jpg", "holiday")
	require.NoError(t, err)

	w := doRequest(ws, "PUT", "/library/albums/holiday/selected", models.SelectionRequest{Selected: boolPtr(true)})
	require.Equal(t, http.StatusOK, w.Code)

	selected, err := db.SelectedPhotos()
	require.NoError(t, err)
	assert.Len(t, selected, 2)

	w = doRequest(ws, "PUT", "/library/albums/nope/selected", models.SelectionRequest{Selected: boolPtr(true)})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetCaption(t *testing.T) {
	ws, db, _, _ := newTestServer(t)

	id, err := db.InsertPhoto("a.jpg", "holiday")
	require.NoError(t, err)

	w := doRequest(ws, "PUT", "/library/photos/1/caption", models.CaptionRequest{Caption: "beach"})
	require.Equal(t, http.StatusOK, w.Code)

	photo, err := db.GetPhoto(id)
	require.NoError(t, err)
	assert.Equal(t, "beach", photo.Caption)
}

func TestRescanEndpoint(t *testing.T) {
	ws, _, cfg, _ := newTestServer(t)

	albumPath := filepath.Join(cfg.PhotosPath(), "holiday")
	require.NoError(t, os.MkdirAll(albumPath, 0o755))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	require.NoError(t, os.WriteFile(filepath.Join(albumPath, "a.png"), buf.Bytes(), 0o644))

	w := doRequest(ws, "POST", "/library/rescan", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.RescanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Added)
	assert.Equal(t, 0, resp.Removed)
	assert.Equal(t, 1, resp.NumPhotos)
	assert.Equal(t, 1, resp.NumAlbums)
}

func TestGetSettings(t *testing.T) {
	ws, _, _, _ := newTestServer(t)

	w := doRequest(ws, "GET", "/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var settings store.Settings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.Equal(t, store.DefaultSettings, settings)
}

func TestUpdateSettingsValidation(t *testing.T) {
	ws, _, _, _ := newTestServer(t)

	base := store.DefaultSettings

	bad := base
	bad.TransitionSeconds = 0
	w := doRequest(ws, "PUT", "/settings", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad = base
	bad.Brightness = 5
	w = doRequest(ws, "PUT", "/settings", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad = base
	bad.SleepStart = "25:00"
	w = doRequest(ws, "PUT", "/settings", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad = base
	bad.SleepEnd = "9pm"
	w = doRequest(ws, "PUT", "/settings", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateSettingsSuccess(t *testing.T) {
	ws, db, _, cmds := newTestServer(t)

	id, err := db.InsertPhoto("a.jpg", "holiday")
	require.NoError(t, err)
	require.NoError(t, db.SetPhotoSelected(id, true))

	updated := store.DefaultSettings
	updated.TransitionSeconds = 42
	updated.Brightness = 80

	w := doRequest(ws, "PUT", "/settings", updated)
	require.Equal(t, http.StatusOK, w.Code)

	var resp store.Settings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, updated, resp)

	stored, err := db.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, &updated, stored)

	// The slideshow restarted with the new transition interval.
	require.Len(t, cmds.ran, 1)
	assert.Equal(t, []string{"pkill", "imv-wayland"}, cmds.ran[0])
	require.Len(t, cmds.started, 1)
	started := cmds.started[0]
	assert.Equal(t, "/usr/bin/imv-wayland", started[0])
	assert.Equal(t, []string{"-f", "-s", "full", "-t", "42"}, started[1:6])
}

func TestDisplayStateValidation(t *testing.T) {
	ws, _, _, _ := newTestServer(t)

	w := doRequest(ws, "PUT", "/display/power/2", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBrightnessWithoutBacklight(t *testing.T) {
	ws, _, _, _ := newTestServer(t)

	w := doRequest(ws, "GET", "/display/brightness", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(ws, "PUT", "/display/brightness", models.BrightnessRequest{Brightness: 50})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPowerStatusIdle(t *testing.T) {
	ws, _, _, _ := newTestServer(t)

	w := doRequest(ws, "GET", "/system/power", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.PowerStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Action)
	assert.Equal(t, 0, resp.SecondsRemaining)

	w = doRequest(ws, "POST", "/system/power/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUIAlbumsFragment(t *testing.T) {
	ws, db, _, _ := newTestServer(t)

	w := doRequest(ws, "GET", "/ui/albums", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No albums found")

	_, err := db.InsertPhoto("a.jpg", "holiday")
	require.NoError(t, err)

	w = doRequest(ws, "GET", "/ui/albums", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "holiday (1)")
}

func boolPtr(b bool) *bool {
	return &b
}
