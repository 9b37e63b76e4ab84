//go:build linux

package engine

import (
	"fmt"
	"net/netip"
	"os/exec"
)

// normalizeInterfaceName returns the name as-is on Linux (no restrictions).
func normalizeInterfaceName(name string) string {
	return name
}

func assignAddresses(ifname string, prefixes []netip.Prefix) error {
	for _, prefix := range prefixes {
		family := "-4"
		if prefix.Addr().Is6() {
			family = "-6"
		}
		cmd := exec.Command("ip", family, "address", "add", prefix.String(), "dev", ifname)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("failed to set IP address %s: %w: %s", prefix, err, string(out))
		}
	}
	return nil
}

func linkUp(ifname string) error {
	cmd := exec.Command("ip", "link", "set", "dev", ifname, "up")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to bring interface up: %w: %s", err, string(out))
	}
	return nil
}

func linkDown(ifname string) error {
	cmd := exec.Command("ip", "link", "set", "dev", ifname, "down")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, string(out))
	}
	return nil
}
