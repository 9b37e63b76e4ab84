//go:build darwin

package routing

import "net/netip"

func family(addr netip.Addr) string {
	if addr.Is6() {
		return "-inet6"
	}
	return "-inet"
}

func defaultGateway(v6 bool) (netip.Addr, string, error) {
	args := []string{"-n", "get", "default"}
	if v6 {
		args = []string{"-n", "get", "-inet6", "default"}
	}
	out, err := output("route", args...)
	if err != nil {
		return netip.Addr{}, "", err
	}
	return parseRouteGet(out)
}

func addRoute(r Route) error {
	args := []string{"-q", "-n", "add", family(r.Destination.Addr()), r.Destination.String()}
	if r.Gateway.IsValid() {
		args = append(args, r.Gateway.String())
	} else {
		args = append(args, "-interface", r.Device)
	}
	return run("route", args...)
}

func deleteRoute(r Route) error {
	return run("route", "-q", "-n", "delete", family(r.Destination.Addr()), r.Destination.String())
}
