// Package models tracks all api models for request and responses
package models

import (
	"github.com/matthewar/snekframe/store"
	"github.com/matthewar/snekframe/voltage"
)

type PhotoListResponse struct {
	Photos []store.Photo `json:"photos"`
	Total  int           `json:"total"`
}

type AlbumListResponse struct {
	Albums    []store.AlbumInfo `json:"albums"`
	NumPhotos int               `json:"num_photos"`
	NumAlbums int               `json:"num_albums"`
}

type RescanResponse struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	NumPhotos int `json:"num_photos"`
	NumAlbums int `json:"num_albums"`
}

type SelectionRequest struct {
	Selected *bool `json:"selected" binding:"required"`
}

type CaptionRequest struct {
	Caption string `json:"caption"`
}

type BrightnessRequest struct {
	Brightness int `json:"brightness"`
}

type BrightnessResponse struct {
	Brightness int `json:"brightness"`
}

type DisplayStateResponse struct {
	Enabled bool `json:"enabled"`
}

type PowerStatusResponse struct {
	Action           string `json:"action"`
	SecondsRemaining int    `json:"seconds_remaining"`
}

type SystemInfoResponse struct {
	Version          string        `json:"version"`
	SchemaVersion    uint          `json:"schema_version"`
	IPAddress        string        `json:"ip_address"`
	Voltage          voltage.State `json:"voltage"`
	SlideshowRunning bool          `json:"slideshow_running"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
