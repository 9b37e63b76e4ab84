//go:build windows

package routing

import (
	"fmt"
	"net/netip"
)

func family(addr netip.Addr) string {
	if addr.Is6() {
		return "ipv6"
	}
	return "ipv4"
}

func defaultGateway(v6 bool) (netip.Addr, string, error) {
	prefix := "0.0.0.0/0"
	if v6 {
		prefix = "::/0"
	}
	out, err := output("powershell", "-NoProfile", "-Command", fmt.Sprintf(
		`Get-NetRoute -DestinationPrefix '%s' | Sort-Object RouteMetric | ForEach-Object { "$($_.NextHop) $($_.InterfaceIndex)" }`,
		prefix))
	if err != nil {
		return netip.Addr{}, "", err
	}
	return parseNetRoute(out)
}

func routeArgs(verb string, r Route) []string {
	args := []string{"interface", family(r.Destination.Addr()), verb, "route",
		"prefix=" + r.Destination.String(),
		"interface=" + r.Device,
	}
	if r.Gateway.IsValid() {
		args = append(args, "nexthop="+r.Gateway.String())
	}
	return append(args, "store=active")
}

func addRoute(r Route) error {
	return run("netsh", append(routeArgs("add", r), "metric=1")...)
}

func deleteRoute(r Route) error {
	return run("netsh", routeArgs("delete", r)...)
}
