// Package dns points system name resolution at a tunnel's DNS servers while
// the tunnel is up.
package dns

import (
	"net/netip"
	"sync"

	"github.com/user/oneclick-vpn/internal/logger"
	"github.com/user/oneclick-vpn/internal/procutil"
)

// Replaced in tests.
var (
	run    = procutil.Run
	output = procutil.Output
)

// Manager configures resolvers for one tunnel interface.
type Manager struct {
	mu        sync.Mutex
	device    string
	applied   bool
	service   string   // macOS network service that was changed
	originals []string // resolvers to restore, where the platform needs them
}

// NewManager creates a manager for the named tunnel interface.
func NewManager(device string) *Manager {
	return &Manager{device: device}
}

// Set routes DNS queries to servers and registers search domains. Nothing
// changes when servers is empty.
func (m *Manager) Set(servers []netip.Addr, search []string) error {
	if len(servers) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.apply(servers, search); err != nil {
		return err
	}
	m.applied = true
	logger.Info("DNS for %s set to %v", m.device, servers)
	return nil
}

// Reset undoes Set. Safe to call when nothing was set.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.applied {
		return nil
	}
	m.applied = false
	err := m.restore()
	m.service = ""
	m.originals = nil
	return err
}

func strs(addrs []netip.Addr) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.String()
	}
	return out
}
