//go:build darwin

package engine

import (
	"fmt"
	"net/netip"
	"os/exec"
)

// normalizeInterfaceName maps any name to "utun"; macOS picks the number.
func normalizeInterfaceName(string) string {
	return "utun"
}

// assignAddresses configures point-to-point addresses on the utun interface.
func assignAddresses(ifname string, prefixes []netip.Prefix) error {
	for _, prefix := range prefixes {
		addr := prefix.Addr()
		var cmd *exec.Cmd
		if addr.Is4() {
			cmd = exec.Command("ifconfig", ifname, "inet", prefix.String(), addr.String(), "alias")
		} else {
			cmd = exec.Command("ifconfig", ifname, "inet6", prefix.String(), "alias")
		}
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("failed to set IP address %s: %w: %s", prefix, err, string(out))
		}
	}
	return nil
}

func linkUp(ifname string) error {
	cmd := exec.Command("ifconfig", ifname, "up")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to bring interface up: %w: %s", err, string(out))
	}
	return nil
}

func linkDown(ifname string) error {
	cmd := exec.Command("ifconfig", ifname, "down")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, string(out))
	}
	return nil
}
