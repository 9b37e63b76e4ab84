// Package routing sends tunnel traffic through the VPN interface while
// keeping the server itself reachable through the original gateway.
package routing

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"sync"

	"github.com/user/oneclick-vpn/internal/logger"
	"github.com/user/oneclick-vpn/internal/procutil"
)

// Route is a routing table entry installed by a Manager.
type Route struct {
	Destination netip.Prefix
	Gateway     netip.Addr // invalid for on-link routes through Device
	Device      string
}

func (r Route) String() string {
	var b strings.Builder
	b.WriteString(r.Destination.String())
	if r.Gateway.IsValid() {
		b.WriteString(" via ")
		b.WriteString(r.Gateway.String())
	}
	if r.Device != "" {
		b.WriteString(" dev ")
		b.WriteString(r.Device)
	}
	return b.String()
}

// Replaced in tests.
var (
	run    = procutil.Run
	output = procutil.Output
)

// Manager installs the routes for one tunnel interface and removes them again.
type Manager struct {
	mu     sync.Mutex
	device string
	routes []Route
}

// NewManager creates a manager for the named tunnel interface.
func NewManager(device string) *Manager {
	return &Manager{device: device}
}

var (
	v4Halves = []netip.Prefix{netip.MustParsePrefix("0.0.0.0/1"), netip.MustParsePrefix("128.0.0.0/1")}
	v6Halves = []netip.Prefix{netip.MustParsePrefix("::/1"), netip.MustParsePrefix("8000::/1")}
)

// Plan returns the prefixes to route through the tunnel for allowed.
// A default route becomes its two halves so the system default stays in
// place and wins again once the halves are removed.
func Plan(allowed []netip.Prefix) []netip.Prefix {
	var out []netip.Prefix
	add := func(p netip.Prefix) {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	for _, p := range allowed {
		p = p.Masked()
		switch {
		case p.Bits() == 0 && p.Addr().Is4():
			for _, h := range v4Halves {
				add(h)
			}
		case p.Bits() == 0:
			for _, h := range v6Halves {
				add(h)
			}
		default:
			add(p)
		}
	}
	return out
}

// capturesDefault reports whether allowed sends the whole address family of
// addr through the tunnel.
func capturesDefault(allowed []netip.Prefix, addr netip.Addr) bool {
	for _, p := range allowed {
		if p.Bits() == 0 && p.Addr().Is4() == addr.Is4() {
			return true
		}
	}
	return false
}

func hostPrefix(addr netip.Addr) netip.Prefix {
	return netip.PrefixFrom(addr, addr.BitLen())
}

// Apply installs a host route to each server through the original default
// gateway whenever allowed captures that server's family, then routes
// allowed through the tunnel interface. On failure everything installed so
// far is removed.
func (m *Manager) Apply(allowed []netip.Prefix, servers []netip.Addr) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.routes) > 0 {
		return errors.New("routes already applied")
	}

	for _, server := range servers {
		server = server.Unmap()
		if !capturesDefault(allowed, server) {
			continue
		}
		gw, dev, err := defaultGateway(server.Is6())
		if err != nil {
			m.removeLocked()
			return fmt.Errorf("failed to get default gateway: %w", err)
		}
		if err := m.addLocked(Route{Destination: hostPrefix(server), Gateway: gw, Device: dev}); err != nil {
			m.removeLocked()
			return err
		}
	}

	for _, p := range Plan(allowed) {
		if err := m.addLocked(Route{Destination: p, Device: m.device}); err != nil {
			m.removeLocked()
			return err
		}
	}
	logger.Info("Installed %d route(s) for %s", len(m.routes), m.device)
	return nil
}

func (m *Manager) addLocked(r Route) error {
	if err := addRoute(r); err != nil {
		return fmt.Errorf("failed to add route %s: %w", r, err)
	}
	m.routes = append(m.routes, r)
	return nil
}

// Remove deletes every installed route, newest first.
func (m *Manager) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked()
}

func (m *Manager) removeLocked() error {
	var errs []error
	for i := len(m.routes) - 1; i >= 0; i-- {
		if err := deleteRoute(m.routes[i]); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete route %s: %w", m.routes[i], err))
		}
	}
	m.routes = nil
	return errors.Join(errs...)
}

// Routes returns the installed routes in installation order.
func (m *Manager) Routes() []Route {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.routes)
}
