//go:build windows

package dns

import (
	"fmt"
	"net/netip"
)

// The tunnel adapter is ours and torn down with the tunnel, so there is
// nothing to save.
func (m *Manager) apply(servers []netip.Addr, search []string) error {
	var v4, v6 []netip.Addr
	for _, s := range servers {
		if s.Is4() {
			v4 = append(v4, s)
		} else {
			v6 = append(v6, s)
		}
	}
	if err := m.setFamily("ipv4", v4); err != nil {
		return err
	}
	if err := m.setFamily("ipv6", v6); err != nil {
		return err
	}
	if len(search) > 0 {
		if err := run("powershell", "-NoProfile", "-Command", fmt.Sprintf(
			`Set-DnsClient -InterfaceAlias '%s' -ConnectionSpecificSuffix '%s'`, m.device, search[0])); err != nil {
			return fmt.Errorf("failed to set DNS suffix: %w", err)
		}
	}
	return nil
}

func (m *Manager) setFamily(family string, servers []netip.Addr) error {
	for i, s := range servers {
		verb := "add"
		args := []string{"name=" + m.device, "address=" + s.String(), "validate=no"}
		if i == 0 {
			verb = "set"
			args = []string{"name=" + m.device, "source=static", "address=" + s.String(), "validate=no"}
		}
		if err := run("netsh", append([]string{"interface", family, verb, "dnsservers"}, args...)...); err != nil {
			return fmt.Errorf("failed to set DNS: %w", err)
		}
	}
	return nil
}

func (m *Manager) restore() error {
	err := run("netsh", "interface", "ipv4", "set", "dnsservers", "name="+m.device, "source=dhcp")
	run("netsh", "interface", "ipv6", "set", "dnsservers", "name="+m.device, "source=dhcp")
	run("ipconfig", "/flushdns")
	if err != nil {
		return fmt.Errorf("failed to reset DNS: %w", err)
	}
	return nil
}
