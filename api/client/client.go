// Package client is an http client for the frame's control api.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/matthewar/snekframe/api/models"
	"github.com/matthewar/snekframe/store"
)

type FrameClient struct {
	baseURL string
	client  *http.Client
}

func NewFrameClient(baseURL string) *FrameClient {
	return &FrameClient{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (fc *FrameClient) do(method, path string, reqBody, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, fc.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := fc.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp models.ErrorResponse
		if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("server error: %s", errResp.Error)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(data))
	}

	if respBody != nil {
		if err := json.Unmarshal(data, respBody); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func (fc *FrameClient) Rescan() (*models.RescanResponse, error) {
	var resp models.RescanResponse
	if err := fc.do("POST", "/library/rescan", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (fc *FrameClient) ListAlbums() (*models.AlbumListResponse, error) {
	var resp models.AlbumListResponse
	if err := fc.do("GET", "/library/albums", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (fc *FrameClient) GetSettings() (*store.Settings, error) {
	var settings store.Settings
	if err := fc.do("GET", "/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (fc *FrameClient) UpdateSettings(settings *store.Settings) error {
	return fc.do("PUT", "/settings", settings, nil)
}

func (fc *FrameClient) RestartSlideshow() error {
	return fc.do("POST", "/slideshow/restart", nil, nil)
}

func (fc *FrameClient) StopSlideshow() error {
	return fc.do("POST", "/slideshow/stop", nil, nil)
}

func (fc *FrameClient) GetDisplay() (bool, error) {
	var resp models.DisplayStateResponse
	if err := fc.do("GET", "/display/power", nil, &resp); err != nil {
		return false, err
	}
	return resp.Enabled, nil
}

func (fc *FrameClient) SetDisplay(enabled bool) error {
	state := "0"
	if enabled {
		state = "1"
	}
	return fc.do("PUT", "/display/power/"+state, nil, nil)
}

func (fc *FrameClient) SetBrightness(brightness int) error {
	return fc.do("PUT", "/display/brightness", models.BrightnessRequest{Brightness: brightness}, nil)
}

func (fc *FrameClient) Shutdown() (*models.PowerStatusResponse, error) {
	var resp models.PowerStatusResponse
	if err := fc.do("POST", "/system/shutdown", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (fc *FrameClient) Reboot() (*models.PowerStatusResponse, error) {
	var resp models.PowerStatusResponse
	if err := fc.do("POST", "/system/reboot", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (fc *FrameClient) CancelPower() error {
	return fc.do("POST", "/system/power/cancel", nil, nil)
}

func (fc *FrameClient) SystemInfo() (*models.SystemInfoResponse, error) {
	var resp models.SystemInfoResponse
	if err := fc.do("GET", "/system", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
