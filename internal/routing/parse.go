package routing

import (
	"fmt"
	"net/netip"
	"strings"
)

// parseIPRoute reads the gateway and device from `ip route show default`:
//
//	default via 192.168.1.1 dev eth0 proto dhcp metric 100
func parseIPRoute(out string) (netip.Addr, string, error) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] != "default" {
			continue
		}
		var gw, dev string
		for i := 0; i+1 < len(fields); i++ {
			switch fields[i] {
			case "via":
				gw = fields[i+1]
			case "dev":
				dev = fields[i+1]
			}
		}
		if gw == "" {
			continue
		}
		addr, err := netip.ParseAddr(gw)
		if err != nil {
			return netip.Addr{}, "", fmt.Errorf("failed to parse gateway: %w", err)
		}
		return addr, dev, nil
	}
	return netip.Addr{}, "", fmt.Errorf("no default gateway")
}

// parseRouteGet reads the gateway and interface from `route -n get default`.
func parseRouteGet(out string) (netip.Addr, string, error) {
	var gw, dev string
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		switch key {
		case "gateway":
			gw = strings.TrimSpace(value)
		case "interface":
			dev = strings.TrimSpace(value)
		}
	}
	if gw == "" {
		return netip.Addr{}, "", fmt.Errorf("no default gateway")
	}
	// Link-local IPv6 gateways carry a zone: fe80::1%en0.
	addr, err := netip.ParseAddr(gw)
	if err != nil {
		return netip.Addr{}, "", fmt.Errorf("failed to parse gateway: %w", err)
	}
	return addr, dev, nil
}

// parseNetRoute reads "<NextHop> <InterfaceIndex>" lines printed by the
// PowerShell default route query, taking the first usable one.
func parseNetRoute(out string) (netip.Addr, string, error) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		addr, err := netip.ParseAddr(fields[0])
		if err != nil || addr.IsUnspecified() {
			continue
		}
		return addr, fields[1], nil
	}
	return netip.Addr{}, "", fmt.Errorf("no default gateway")
}
