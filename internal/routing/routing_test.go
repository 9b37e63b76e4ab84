package routing

import (
	"net/netip"
	"slices"
	"testing"
)

func prefixes(s ...string) []netip.Prefix {
	out := make([]netip.Prefix, len(s))
	for i, v := range s {
		out[i] = netip.MustParsePrefix(v)
	}
	return out
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name    string
		allowed []netip.Prefix
		want    []netip.Prefix
	}{
		{"full tunnel", prefixes("0.0.0.0/0", "::/0"), prefixes("0.0.0.0/1", "128.0.0.0/1", "::/1", "8000::/1")},
		{"split", prefixes("10.77.0.0/16", "192.168.5.9/32"), prefixes("10.77.0.0/16", "192.168.5.9/32")},
		{"unmasked", prefixes("10.77.3.4/16"), prefixes("10.77.0.0/16")},
		{"duplicates", prefixes("0.0.0.0/0", "0.0.0.0/1", "10.0.0.0/8", "10.0.0.0/8"), prefixes("0.0.0.0/1", "128.0.0.0/1", "10.0.0.0/8")},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Plan(tt.allowed); !slices.Equal(got, tt.want) {
				t.Fatalf("Plan = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCapturesDefault(t *testing.T) {
	allowed := prefixes("0.0.0.0/0", "fd00::/8")
	if !capturesDefault(allowed, netip.MustParseAddr("203.0.113.7")) {
		t.Error("IPv4 server should be captured")
	}
	if capturesDefault(allowed, netip.MustParseAddr("2001:db8::7")) {
		t.Error("IPv6 server should not be captured")
	}
}

func TestParseIPRoute(t *testing.T) {
	gw, dev, err := parseIPRoute("default via 192.168.1.1 dev eth0 proto dhcp src 192.168.1.20 metric 100\n")
	if err != nil {
		t.Fatal(err)
	}
	if gw != netip.MustParseAddr("192.168.1.1") || dev != "eth0" {
		t.Fatalf("got %v %q", gw, dev)
	}

	if _, _, err := parseIPRoute("default dev wg0 scope link\n"); err == nil {
		t.Fatal("expected error for on-link default")
	}
	if _, _, err := parseIPRoute(""); err == nil {
		t.Fatal("expected error for empty output")
	}
}

func TestParseRouteGet(t *testing.T) {
	out := `   route to: default
destination: default
       mask: default
    gateway: 10.0.1.1
  interface: en0
      flags: <UP,GATEWAY,DONE,STATIC,PRCLONING>
`
	gw, dev, err := parseRouteGet(out)
	if err != nil {
		t.Fatal(err)
	}
	if gw != netip.MustParseAddr("10.0.1.1") || dev != "en0" {
		t.Fatalf("got %v %q", gw, dev)
	}

	gw, _, err = parseRouteGet("gateway: fe80::1%en0\ninterface: en0\n")
	if err != nil || gw.Zone() != "en0" {
		t.Fatalf("zoned gateway = %v, %v", gw, err)
	}
}

func TestParseNetRoute(t *testing.T) {
	gw, dev, err := parseNetRoute("0.0.0.0 44\r\n192.168.0.1 12\r\n")
	if err != nil {
		t.Fatal(err)
	}
	if gw != netip.MustParseAddr("192.168.0.1") || dev != "12" {
		t.Fatalf("got %v %q", gw, dev)
	}
}

func TestRouteString(t *testing.T) {
	r := Route{Destination: netip.MustParsePrefix("203.0.113.7/32"), Gateway: netip.MustParseAddr("192.168.1.1"), Device: "eth0"}
	if got := r.String(); got != "203.0.113.7/32 via 192.168.1.1 dev eth0" {
		t.Fatalf("String = %q", got)
	}
}
