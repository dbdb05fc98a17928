// Package voltage watches the Raspberry Pi throttle status so the UI can
// warn about an inadequate power supply.
package voltage

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

const pollInterval = 30 * time.Minute

// Throttle bit positions reported by vcgencmd get_throttled.
const (
	bitUnderVoltageNow     = 1 << 0
	bitFrequencyCappedNow  = 1 << 1
	bitThrottledNow        = 1 << 2
	bitUnderVoltagePast    = 1 << 16
	bitFrequencyCappedPast = 1 << 17
	bitThrottledPast       = 1 << 18
)

// State is a decoded snapshot of the throttle status.
type State struct {
	UnderVoltageNow     bool `json:"under_voltage_now"`
	UnderVoltagePast    bool `json:"under_voltage_past"`
	FrequencyCappedNow  bool `json:"frequency_capped_now"`
	FrequencyCappedPast bool `json:"frequency_capped_past"`
	ThrottledNow        bool `json:"throttled_now"`
	ThrottledPast       bool `json:"throttled_past"`
}

// Warning reports whether the power supply was ever inadequate.
func (s State) Warning() bool {
	return s.UnderVoltageNow || s.UnderVoltagePast
}

// Monitor polls vcgencmd periodically and caches the last decoded state.
type Monitor struct {
	mu    sync.Mutex
	state State

	// Command hook, replaceable in tests
	outputCommand func(name string, args ...string) ([]byte, error)
}

func NewMonitor() *Monitor {
	return &Monitor{
		outputCommand: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).Output()
		},
	}
}

// State returns the most recent snapshot.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Check reads the throttle status once and updates the snapshot.
func (m *Monitor) Check() (State, error) {
	out, err := m.outputCommand("vcgencmd", "get_throttled")
	if err != nil {
		return State{}, fmt.Errorf("failed to run vcgencmd: %w", err)
	}

	state, err := parseThrottled(string(out))
	if err != nil {
		return State{}, err
	}

	m.mu.Lock()
	m.state = state
	m.mu.Unlock()

	if state.Warning() {
		slog.Warn("inadequate power supply detected",
			"under_voltage_now", state.UnderVoltageNow,
			"under_voltage_past", state.UnderVoltagePast)
	}
	return state, nil
}

func (m *Monitor) Run() {
	ticker := time.NewTicker(pollInterval)

	if _, err := m.Check(); err != nil {
		slog.Warn("error checking throttle status", "error", err)
	}

	for range ticker.C {
		if _, err := m.Check(); err != nil {
			slog.Warn("error checking throttle status", "error", err)
		}
	}
}

// parseThrottled decodes output of the form "throttled=0x50005".
func parseThrottled(out string) (State, error) {
	value := strings.TrimSpace(out)
	value = strings.TrimPrefix(value, "throttled=")
	value = strings.TrimPrefix(value, "0x")

	bits, err := strconv.ParseUint(value, 16, 64)
	if err != nil {
		return State{}, fmt.Errorf("unexpected vcgencmd output %q: %w", strings.TrimSpace(out), err)
	}

	return State{
		UnderVoltageNow:     bits&bitUnderVoltageNow != 0,
		UnderVoltagePast:    bits&bitUnderVoltagePast != 0,
		FrequencyCappedNow:  bits&bitFrequencyCappedNow != 0,
		FrequencyCappedPast: bits&bitFrequencyCappedPast != 0,
		ThrottledNow:        bits&bitThrottledNow != 0,
		ThrottledPast:       bits&bitThrottledPast != 0,
	}, nil
}
