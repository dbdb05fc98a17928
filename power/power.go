// Package power requests system shutdown or reboot with a short
// cancellation window before the command fires.
package power

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"sync"
	"time"
)

type Action string

const (
	ActionShutdown Action = "shutdown"
	ActionReboot   Action = "reboot"
)

const countdown = 5 * time.Second

var (
	ErrActionPending   = errors.New("a power action is already pending")
	ErrNoActionPending = errors.New("no power action is pending")
	ErrUnknownAction   = errors.New("unknown power action")
)

// Controller serializes power requests. Only one countdown can be pending
// at a time and it may be cancelled until the command runs.
type Controller struct {
	mu       sync.Mutex
	pending  Action
	deadline time.Time
	cancel   context.CancelFunc

	// Command hook, replaceable in tests
	runCommand func(name string, args ...string) error
}

func NewController() *Controller {
	return &Controller{
		runCommand: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Request starts the countdown for the given action.
func (c *Controller) Request(action Action) error {
	if action != ActionShutdown && action != ActionReboot {
		return ErrUnknownAction
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != "" {
		return ErrActionPending
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.pending = action
	c.deadline = time.Now().Add(countdown)
	c.cancel = cancel

	slog.Info("power action requested", "action", action, "countdown", countdown)

	go c.wait(ctx, action)
	return nil
}

// Cancel aborts a pending countdown.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == "" {
		return ErrNoActionPending
	}

	slog.Info("power action cancelled", "action", c.pending)
	c.cancel()
	c.clearLocked()
	return nil
}

// Status returns the pending action and the seconds remaining before it
// fires. The action is empty when nothing is pending.
func (c *Controller) Status() (Action, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == "" {
		return "", 0
	}
	remaining := int(time.Until(c.deadline).Round(time.Second).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return c.pending, remaining
}

func (c *Controller) wait(ctx context.Context, action Action) {
	timer := time.NewTimer(countdown)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	c.fire(ctx, action)
}

// fire dispatches the action unless a cancellation won the race with the
// timer. The pending state is cleared only after the command was issued,
// so Status and Cancel keep reporting the action until it actually fires.
func (c *Controller) fire(ctx context.Context, action Action) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-ctx.Done():
		return
	default:
	}

	c.execute(action)
	c.clearLocked()
}

func (c *Controller) execute(action Action) {
	var args []string
	switch action {
	case ActionShutdown:
		args = []string{"/sbin/shutdown", "now"}
	case ActionReboot:
		args = []string{"/sbin/reboot"}
	default:
		return
	}

	slog.Info("executing power action", "action", action)
	if err := c.runCommand("sudo", args...); err != nil {
		slog.Error("failed to execute power action", "action", action, "error", err)
	}
}

func (c *Controller) clearLocked() {
	c.pending = ""
	c.deadline = time.Time{}
	c.cancel = nil
}
