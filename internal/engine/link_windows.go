//go:build windows

package engine

import (
	"fmt"
	"net"
	"net/netip"
	"os/exec"

	"github.com/user/oneclick-vpn/internal/procutil"
)

// normalizeInterfaceName returns the name as-is on Windows (no restrictions).
func normalizeInterfaceName(name string) string {
	return name
}

func assignAddresses(ifname string, prefixes []netip.Prefix) error {
	for _, prefix := range prefixes {
		var cmd *exec.Cmd
		if prefix.Addr().Is4() {
			mask := net.CIDRMask(prefix.Bits(), 32)
			cmd = exec.Command("netsh", "interface", "ipv4", "add", "address",
				fmt.Sprintf("name=%s", ifname),
				fmt.Sprintf("address=%s", prefix.Addr()),
				fmt.Sprintf("mask=%d.%d.%d.%d", mask[0], mask[1], mask[2], mask[3]),
			)
		} else {
			cmd = exec.Command("netsh", "interface", "ipv6", "add", "address",
				fmt.Sprintf("interface=%s", ifname),
				fmt.Sprintf("address=%s", prefix),
			)
		}
		if out, err := procutil.HideWindow(cmd).CombinedOutput(); err != nil {
			return fmt.Errorf("failed to set IP address %s: %w: %s", prefix, err, string(out))
		}
	}
	return nil
}

func linkUp(ifname string) error {
	cmd := procutil.HideWindow(exec.Command("netsh", "interface", "set", "interface",
		ifname, "admin=enable"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to bring interface up: %w: %s", err, string(out))
	}
	return nil
}

func linkDown(ifname string) error {
	cmd := procutil.HideWindow(exec.Command("netsh", "interface", "set", "interface",
		ifname, "admin=disable"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, string(out))
	}
	return nil
}
