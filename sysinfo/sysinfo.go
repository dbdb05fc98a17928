// Package sysinfo surfaces host details shown on the settings page.
package sysinfo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
)

// Version is the application version reported over the API.
const Version = "1.0.0"

var ErrNoAddress = errors.New("no active ipv4 address found")

type addrInfo struct {
	Family string `json:"family"`
	Local  string `json:"local"`
}

type iface struct {
	IfName    string     `json:"ifname"`
	OperState string     `json:"operstate"`
	AddrInfo  []addrInfo `json:"addr_info"`
}

// Resolver looks up host network details.
type Resolver struct {
	// Command hook, replaceable in tests
	outputCommand func(name string, args ...string) ([]byte, error)
}

func NewResolver() *Resolver {
	return &Resolver{
		outputCommand: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).Output()
		},
	}
}

// LocalIPv4 returns the first ipv4 address on an interface whose operstate
// is UP, parsed from the json output of ip.
func (r *Resolver) LocalIPv4() (string, error) {
	out, err := r.outputCommand("ip", "-j", "-4", "addr", "show")
	if err != nil {
		return "", fmt.Errorf("failed to run ip: %w", err)
	}

	var ifaces []iface
	if err := json.Unmarshal(out, &ifaces); err != nil {
		return "", fmt.Errorf("failed to unmarshal ip output: %w", err)
	}

	for _, i := range ifaces {
		if i.OperState != "UP" {
			continue
		}
		for _, addr := range i.AddrInfo {
			if addr.Family == "inet" && addr.Local != "" {
				return addr.Local, nil
			}
		}
	}

	return "", ErrNoAddress
}
