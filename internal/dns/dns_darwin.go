//go:build darwin

package dns

import (
	"fmt"
	"net/netip"
	"strings"
)

func (m *Manager) apply(servers []netip.Addr, search []string) error {
	service, err := primaryService()
	if err != nil {
		return err
	}
	m.service = service
	m.originals = nil
	if out, err := output("networksetup", "-getdnsservers", service); err == nil {
		m.originals = parseServers(out)
	}

	if err := run("networksetup", append([]string{"-setdnsservers", service}, strs(servers)...)...); err != nil {
		return fmt.Errorf("failed to set DNS: %w", err)
	}
	if len(search) > 0 {
		if err := run("networksetup", append([]string{"-setsearchdomains", service}, search...)...); err != nil {
			m.restore()
			return fmt.Errorf("failed to set search domains: %w", err)
		}
	}
	return nil
}

func (m *Manager) restore() error {
	if m.service == "" {
		return nil
	}
	servers := m.originals
	if len(servers) == 0 {
		servers = []string{"empty"}
	}
	err := run("networksetup", append([]string{"-setdnsservers", m.service}, servers...)...)
	run("networksetup", "-setsearchdomains", m.service, "empty")
	if err != nil {
		return fmt.Errorf("failed to reset DNS: %w", err)
	}
	return nil
}

func primaryService() (string, error) {
	out, err := output("networksetup", "-listallnetworkservices")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		// First line is a legend; disabled services start with '*'.
		if line == "" || strings.HasPrefix(line, "An asterisk") || strings.HasPrefix(line, "*") {
			continue
		}
		return line, nil
	}
	return "", fmt.Errorf("no primary network service found")
}

// parseServers reads `networksetup -getdnsservers` output.
func parseServers(out string) []string {
	var servers []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if _, err := netip.ParseAddr(line); err == nil {
			servers = append(servers, line)
		}
	}
	return servers
}
