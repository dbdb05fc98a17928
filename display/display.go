// Package display controls the frame's output and backlight through
// wlr-randr and brightnessctl.
package display

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

type Output struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Make         string       `json:"make"`
	Model        string       `json:"model"`
	Serial       string       `json:"serial"`
	PhysicalSize PhysicalSize `json:"physical_size"`
	Enabled      bool         `json:"enabled"`
	Modes        []Mode       `json:"modes"`
	Position     Position     `json:"position"`
	Transform    string       `json:"transform"`
	Scale        float64      `json:"scale"`
	AdaptiveSync bool         `json:"adaptive_sync"`
}

type PhysicalSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Mode struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Refresh   float64 `json:"refresh"`
	Preferred bool    `json:"preferred"`
	Current   bool    `json:"current"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Controller drives a single wayland output and its backlight device.
type Controller struct {
	output    string
	backlight string

	// Command hooks, replaceable in tests
	runCommand    func(name string, args ...string) error
	outputCommand func(name string, args ...string) ([]byte, error)
}

func NewController(output, backlight string) *Controller {
	return &Controller{
		output:    output,
		backlight: backlight,
		runCommand: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
		outputCommand: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).Output()
		},
	}
}

// Enabled inspects the current state of the output using wlr-randr.
// It returns true if the output is enabled, false if disabled.
func (c *Controller) Enabled() (bool, error) {
	out, err := c.outputCommand("wlr-randr", "--output", c.output, "--json")
	if err != nil {
		return false, fmt.Errorf("failed to run wlr-randr: %w", err)
	}

	var results []Output
	if err := json.Unmarshal(out, &results); err != nil {
		return false, fmt.Errorf("failed to unmarshal wlr-randr output: %w", err)
	}

	for _, result := range results {
		if result.Name == c.output {
			return result.Enabled, nil
		}
	}

	return false, fmt.Errorf("output %s not found", c.output)
}

// SetEnabled updates the enabled state of the output using wlr-randr.
func (c *Controller) SetEnabled(enabled bool) error {
	arg := "--off"
	if enabled {
		arg = "--on"
	}
	if err := c.runCommand("wlr-randr", "--output", c.output, arg); err != nil {
		return fmt.Errorf("failed to run wlr-randr: %w", err)
	}
	return nil
}

// Brightness reads the backlight level as a percentage via brightnessctl's
// machine readable output (device,class,current,percent,max).
func (c *Controller) Brightness() (int, error) {
	out, err := c.outputCommand("brightnessctl", "-m", "-d", c.backlight, "info")
	if err != nil {
		return 0, fmt.Errorf("failed to run brightnessctl: %w", err)
	}

	fields := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(fields) < 4 {
		return 0, fmt.Errorf("unexpected brightnessctl output: %q", string(out))
	}

	pct, err := strconv.Atoi(strings.TrimSuffix(fields[3], "%"))
	if err != nil {
		return 0, fmt.Errorf("failed to parse brightness percentage: %w", err)
	}
	return pct, nil
}

// SetBrightness sets the backlight level to a percentage between 10 and 100.
func (c *Controller) SetBrightness(pct int) error {
	if pct < 10 || pct > 100 {
		return fmt.Errorf("brightness must be between 10 and 100, got %d", pct)
	}
	if err := c.runCommand("brightnessctl", "-d", c.backlight, "set", strconv.Itoa(pct)+"%"); err != nil {
		return fmt.Errorf("failed to run brightnessctl: %w", err)
	}
	return nil
}
