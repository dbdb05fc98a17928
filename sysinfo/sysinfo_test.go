package sysinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ipOutput = `[
  {
    "ifindex": 1,
    "ifname": "lo",
    "operstate": "UNKNOWN",
    "addr_info": [{"family": "inet", "local": "127.0.0.1", "prefixlen": 8}]
  },
  {
    "ifindex": 2,
    "ifname": "wlan0",
    "operstate": "UP",
    "addr_info": [{"family": "inet", "local": "192.168.1.42", "prefixlen": 24}]
  }
]`

func TestLocalIPv4(t *testing.T) {
	r := NewResolver()
	r.outputCommand = func(name string, args ...string) ([]byte, error) {
		assert.Equal(t, "ip", name)
		assert.Equal(t, []string{"-j", "-4", "addr", "show"}, args)
		return []byte(ipOutput), nil
	}

	ip, err := r.LocalIPv4()
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.42", ip)
}

func TestLocalIPv4NoActiveInterface(t *testing.T) {
	r := NewResolver()
	r.outputCommand = func(name string, args ...string) ([]byte, error) {
		return []byte(`[{"ifname": "lo", "operstate": "UNKNOWN", "addr_info": []}]`), nil
	}

	_, err := r.LocalIPv4()
	assert.ErrorIs(t, err, ErrNoAddress)
}

func TestLocalIPv4BadOutput(t *testing.T) {
	r := NewResolver()
	r.outputCommand = func(name string, args ...string) ([]byte, error) {
		return []byte("not json"), nil
	}

	_, err := r.LocalIPv4()
	assert.Error(t, err)
}
