//go:build linux

package routing

import "net/netip"

func family(addr netip.Addr) string {
	if addr.Is6() {
		return "-6"
	}
	return "-4"
}

func defaultGateway(v6 bool) (netip.Addr, string, error) {
	fam := "-4"
	if v6 {
		fam = "-6"
	}
	out, err := output("ip", fam, "route", "show", "default")
	if err != nil {
		return netip.Addr{}, "", err
	}
	return parseIPRoute(out)
}

func addRoute(r Route) error {
	args := []string{family(r.Destination.Addr()), "route", "add", r.Destination.String()}
	if r.Gateway.IsValid() {
		args = append(args, "via", r.Gateway.String())
	}
	if r.Device != "" {
		args = append(args, "dev", r.Device)
	}
	return run("ip", args...)
}

func deleteRoute(r Route) error {
	args := []string{family(r.Destination.Addr()), "route", "del", r.Destination.String()}
	if r.Device != "" {
		args = append(args, "dev", r.Device)
	}
	return run("ip", args...)
}
