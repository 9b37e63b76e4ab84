//go:build linux

package dns

import (
	"fmt"
	"net/netip"
)

// systemd-resolved keeps per-link settings, so the originals never need saving.
func (m *Manager) apply(servers []netip.Addr, search []string) error {
	if err := run("resolvectl", append([]string{"dns", m.device}, strs(servers)...)...); err != nil {
		return fmt.Errorf("failed to set DNS: %w", err)
	}
	// "~." makes this link the default route for every query.
	domains := append([]string{"domain", m.device}, search...)
	domains = append(domains, "~.")
	if err := run("resolvectl", domains...); err != nil {
		run("resolvectl", "revert", m.device)
		return fmt.Errorf("failed to set DNS domains: %w", err)
	}
	return nil
}

func (m *Manager) restore() error {
	if err := run("resolvectl", "revert", m.device); err != nil {
		return fmt.Errorf("failed to reset DNS: %w", err)
	}
	return nil
}
