package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matthewar/snekframe/api/models"
	"github.com/matthewar/snekframe/power"
	"github.com/matthewar/snekframe/store"
	"github.com/matthewar/snekframe/sysinfo"
)

func (ws *WebServer) handleListPhotos(c *gin.Context) {
	album := c.Query("album")

	var photos []store.Photo
	var err error
	if album != "" {
		photos, err = ws.db.PhotosInAlbum(album)
	} else {
		photos, err = ws.db.AllPhotos()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Database error: %v", err)})
		return
	}

	c.JSON(http.StatusOK, models.PhotoListResponse{
		Photos: photos,
		Total:  len(photos),
	})
}

func (ws *WebServer) handlePhotoImage(c *gin.Context) {
	photo, ok := ws.photoFromParam(c)
	if !ok {
		return
	}

	filePath := filepath.Join(ws.cfg.PhotosPath(), photo.Album, photo.Filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: fmt.Sprintf("Photo file not found: %s", photo.Filename)})
		return
	}

	c.File(filePath)
}

func (ws *WebServer) handleSelectPhoto(c *gin.Context) {
	photo, ok := ws.photoFromParam(c)
	if !ok {
		return
	}

	var req models.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	if err := ws.db.SetPhotoSelected(photo.ID, *req.Selected); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to update photo selection: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo selection updated"})
	ws.signalUpdate()
}

func (ws *WebServer) handleSetCaption(c *gin.Context) {
	photo, ok := ws.photoFromParam(c)
	if !ok {
		return
	}

	var req models.CaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	if err := ws.db.SetCaption(photo.ID, req.Caption); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to update caption: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Caption updated"})
}

func (ws *WebServer) handleListAlbums(c *gin.Context) {
	albums, err := ws.db.Albums()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Database error: %v", err)})
		return
	}

	counts, err := ws.db.Counts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Database error: %v", err)})
		return
	}

	c.JSON(http.StatusOK, models.AlbumListResponse{
		Albums:    albums,
		NumPhotos: counts.NumPhotos,
		NumAlbums: counts.NumAlbums,
	})
}

func (ws *WebServer) handleSelectAlbum(c *gin.Context) {
	album := c.Param("album")

	var req models.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	if err := ws.db.SetAlbumSelected(album, *req.Selected); err != nil {
		if errors.Is(err, store.ErrAlbumNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: fmt.Sprintf("Album '%s' not found", album)})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to update album selection: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Album '%s' selection updated", album)})
	ws.signalUpdate()
}

func (ws *WebServer) handleSelectAll(c *gin.Context) {
	var req models.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	if err := ws.db.SetAllSelected(*req.Selected); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to update selection: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Selection updated"})
	ws.signalUpdate()
}

func (ws *WebServer) handleRescan(c *gin.Context) {
	added, removed, err := ws.scanner.Rescan()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to rescan library: %v", err)})
		return
	}

	counts, err := ws.db.Counts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Database error: %v", err)})
		return
	}

	c.JSON(http.StatusOK, models.RescanResponse{
		Added:     added,
		Removed:   removed,
		NumPhotos: counts.NumPhotos,
		NumAlbums: counts.NumAlbums,
	})
}

func (ws *WebServer) handleGetSettings(c *gin.Context) {
	settings, err := ws.db.GetSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to get settings: %v", err)})
		return
	}

	c.JSON(http.StatusOK, settings)
}

var validSleepTime = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d$`)

func (ws *WebServer) handleUpdateSettings(c *gin.Context) {
	var req store.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	if req.TransitionSeconds <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "transition_seconds must be positive"})
		return
	}
	if req.Brightness < 10 || req.Brightness > 100 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "brightness must be between 10 and 100"})
		return
	}
	if !validSleepTime.MatchString(req.SleepStart) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid sleep start time format: need 23:15, got %s", req.SleepStart)})
		return
	}
	if !validSleepTime.MatchString(req.SleepEnd) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid sleep end time format: need 23:15, got %s", req.SleepEnd)})
		return
	}

	newSettings := &req

	if err := ws.db.UpsertSettings(newSettings); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to update settings: %v", err)})
		return
	}

	if ws.cfg.BacklightDevice != "" {
		if err := ws.display.SetBrightness(newSettings.Brightness); err != nil {
			slog.Warn("failed to apply brightness from settings", "error", err)
		}
	}

	// After updating settings, restart the slideshow with the new configuration.
	if err := ws.slideshow.Restart(nil); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to restart slideshow: %v", err)})
		return
	}

	c.JSON(http.StatusOK, newSettings)
}

func (ws *WebServer) handleRestartSlideshow(c *gin.Context) {
	if err := ws.slideshow.Restart(nil); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to restart slideshow: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Slideshow restarted"})
}

func (ws *WebServer) handleStopSlideshow(c *gin.Context) {
	ws.slideshow.Stop()
	c.JSON(http.StatusOK, gin.H{"message": "Slideshow stopped"})
}

func (ws *WebServer) handlePlayFromPhoto(c *gin.Context) {
	photo, ok := ws.photoFromParam(c)
	if !ok {
		return
	}

	if !photo.Selected {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Photo '%s' is not part of the current selection", photo.Filename)})
		return
	}

	if err := ws.slideshow.Restart(photo); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to restart slideshow: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Slideshow restarted",
		"album":    photo.Album,
		"filename": photo.Filename,
	})
}

func (ws *WebServer) handleGetDisplay(c *gin.Context) {
	enabled, err := ws.display.Enabled()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to get display state: %v", err)})
		return
	}

	c.JSON(http.StatusOK, models.DisplayStateResponse{Enabled: enabled})
}

func (ws *WebServer) handleUpdateDisplay(c *gin.Context) {
	state := c.Param("state")
	if state != "0" && state != "1" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "state must be 0 (off) or 1 (on)"})
		return
	}

	desiredEnabled := state == "1"
	if err := ws.display.SetEnabled(desiredEnabled); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to update display state: %v", err)})
		return
	}

	// Re-read state to reflect actual output if possible.
	enabled, err := ws.display.Enabled()
	if err != nil {
		slog.Warn("failed to re-read display state after update", "error", err)
		enabled = desiredEnabled
	}

	c.JSON(http.StatusOK, models.DisplayStateResponse{Enabled: enabled})
}

func (ws *WebServer) handleGetBrightness(c *gin.Context) {
	if ws.cfg.BacklightDevice == "" {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "No backlight device configured"})
		return
	}

	brightness, err := ws.display.Brightness()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to get brightness: %v", err)})
		return
	}

	c.JSON(http.StatusOK, models.BrightnessResponse{Brightness: brightness})
}

func (ws *WebServer) handleSetBrightness(c *gin.Context) {
	if ws.cfg.BacklightDevice == "" {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "No backlight device configured"})
		return
	}

	var req models.BrightnessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	if req.Brightness < 10 || req.Brightness > 100 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "brightness must be between 10 and 100"})
		return
	}

	if err := ws.display.SetBrightness(req.Brightness); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to set brightness: %v", err)})
		return
	}

	c.JSON(http.StatusOK, models.BrightnessResponse{Brightness: req.Brightness})
}

func (ws *WebServer) handleSystemInfo(c *gin.Context) {
	schemaVersion, err := ws.db.SchemaVersion()
	if err != nil {
		slog.Warn("failed to read schema version", "error", err)
	}

	ip, err := ws.sysinfo.LocalIPv4()
	if err != nil {
		slog.Warn("failed to resolve local address", "error", err)
	}

	c.JSON(http.StatusOK, models.SystemInfoResponse{
		Version:          sysinfo.Version,
		SchemaVersion:    schemaVersion,
		IPAddress:        ip,
		Voltage:          ws.voltage.State(),
		SlideshowRunning: ws.slideshow.Running(),
	})
}

func (ws *WebServer) handlePowerStatus(c *gin.Context) {
	action, remaining := ws.power.Status()
	c.JSON(http.StatusOK, models.PowerStatusResponse{
		Action:           string(action),
		SecondsRemaining: remaining,
	})
}

func (ws *WebServer) handleShutdown(c *gin.Context) {
	ws.requestPower(c, power.ActionShutdown)
}

func (ws *WebServer) handleReboot(c *gin.Context) {
	ws.requestPower(c, power.ActionReboot)
}

func (ws *WebServer) requestPower(c *gin.Context, action power.Action) {
	if err := ws.power.Request(action); err != nil {
		if errors.Is(err, power.ErrActionPending) {
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to request %s: %v", action, err)})
		return
	}

	pending, remaining := ws.power.Status()
	c.JSON(http.StatusOK, models.PowerStatusResponse{
		Action:           string(pending),
		SecondsRemaining: remaining,
	})
}

func (ws *WebServer) handleCancelPower(c *gin.Context) {
	if err := ws.power.Cancel(); err != nil {
		if errors.Is(err, power.ErrNoActionPending) {
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to cancel power action: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Power action cancelled"})
}

// photoFromParam resolves the :id route parameter to a photo, writing the
// error response itself when the lookup fails.
func (ws *WebServer) photoFromParam(c *gin.Context) (*store.Photo, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid photo id"})
		return nil, false
	}

	photo, err := ws.db.GetPhoto(id)
	if err != nil {
		if errors.Is(err, store.ErrPhotoNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: fmt.Sprintf("Photo %d not found", id)})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Database error: %v", err)})
		return nil, false
	}
	return photo, true
}

// signalUpdate triggers a slideshow restart without blocking the handler.
func (ws *WebServer) signalUpdate() {
	select {
	case ws.Updated <- true:
	default:
	}
}
