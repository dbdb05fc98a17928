package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wlrRandrOutput = `[
  {
    "name": "HDMI-A-1",
    "description": "Samsung Electric Company S24E450 (HDMI-A-1)",
    "make": "Samsung Electric Company",
    "model": "S24E450",
    "serial": "H4ZJC00001",
    "physical_size": {"width": 520, "height": 290},
    "enabled": true,
    "modes": [
      {"width": 1920, "height": 1080, "refresh": 60.0, "preferred": true, "current": true}
    ],
    "position": {"x": 0, "y": 0},
    "transform": "normal",
    "scale": 1.0,
    "adaptive_sync": false
  }
]`

func newTestController() (*Controller, *[][]string, *string) {
	c := NewController("HDMI-A-1", "10-0045")

	var ran [][]string
	output := wlrRandrOutput
	c.runCommand = func(name string, args ...string) error {
		ran = append(ran, append([]string{name}, args...))
		return nil
	}
	c.outputCommand = func(name string, args ...string) ([]byte, error) {
		ran = append(ran, append([]string{name}, args...))
		return []byte(output), nil
	}
	return c, &ran, &output
}

func TestEnabled(t *testing.T) {
	c, ran, _ := newTestController()

	enabled, err := c.Enabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	require.Len(t, *ran, 1)
	assert.Equal(t, []string{"wlr-randr", "--output", "HDMI-A-1", "--json"}, (*ran)[0])
}

func TestEnabledUnknownOutput(t *testing.T) {
	c, _, output := newTestController()
	*output = `[{"name": "DSI-1", "enabled": true}]`

	_, err := c.Enabled()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HDMI-A-1 not found")
}

func TestSetEnabled(t *testing.T) {
	c, ran, _ := newTestController()

	require.NoError(t, c.SetEnabled(true))
	require.NoError(t, c.SetEnabled(false))

	require.Len(t, *ran, 2)
	assert.Equal(t, []string{"wlr-randr", "--output", "HDMI-A-1", "--on"}, (*ran)[0])
	assert.Equal(t, []string{"wlr-randr", "--output", "HDMI-A-1", "--off"}, (*ran)[1])
}

func TestBrightness(t *testing.T) {
	c, ran, output := newTestController()
	*output = "10-0045,backlight,157,62%,255\n"

	brightness, err := c.Brightness()
	require.NoError(t, err)
	assert.Equal(t, 62, brightness)

	require.Len(t, *ran, 1)
	assert.Equal(t, []string{"brightnessctl", "-m", "-d", "10-0045", "info"}, (*ran)[0])
}

func TestBrightnessBadOutput(t *testing.T) {
	c, _, output := newTestController()
	*output = "garbage"

	_, err := c.Brightness()
	assert.Error(t, err)
}

func TestSetBrightness(t *testing.T) {
	c, ran, _ := newTestController()

	require.NoError(t, c.SetBrightness(70))
	require.Len(t, *ran, 1)
	assert.Equal(t, []string{"brightnessctl", "-d", "10-0045", "set", "70%"}, (*ran)[0])
}

func TestSetBrightnessRange(t *testing.T) {
	c, ran, _ := newTestController()

	assert.Error(t, c.SetBrightness(5))
	assert.Error(t, c.SetBrightness(0))
	assert.Error(t, c.SetBrightness(101))
	assert.Empty(t, *ran)
}
