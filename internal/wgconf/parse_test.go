package wgconf

import (
	"errors"
	"net/netip"
	"strings"
	"testing"
)

const (
	testPrivateKey = "yAnz5TF+lXXJte14tji3zlMNq+hd2rYUIgJBgB3fBmk="
	testPublicKey  = "xTIBA5rboUvnH4htodjb6e697QjLERt1NAB4mZqp8Dg="
	testPSK        = "HIgo9xNzJMWLKASShiTqIybxZ0U3wGLiUeJ1PKf8ykw="
)

const fullConfig = `# client07
[Interface]
PrivateKey = ` + testPrivateKey + `
Address = 10.77.0.8/32, fd00::8
DNS = 1.1.1.1, corp.example
ListenPort = 51000
MTU = 1380

[Peer]
PublicKey = ` + testPublicKey + `
PresharedKey = ` + testPSK + `
Endpoint = 203.0.113.7:51820
AllowedIPs = 0.0.0.0/0, ::/0
PersistentKeepalive = 25
`

func TestParseFullConfig(t *testing.T) {
	cfg, err := Parse(fullConfig)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Interface.PrivateKey.String() != testPrivateKey {
		t.Errorf("private key = %s", cfg.Interface.PrivateKey)
	}
	wantAddrs := []netip.Prefix{
		netip.MustParsePrefix("10.77.0.8/32"),
		netip.MustParsePrefix("fd00::8/128"),
	}
	if len(cfg.Interface.Addresses) != len(wantAddrs) {
		t.Fatalf("addresses = %v", cfg.Interface.Addresses)
	}
	for i, want := range wantAddrs {
		if cfg.Interface.Addresses[i] != want {
			t.Errorf("address[%d] = %s, want %s", i, cfg.Interface.Addresses[i], want)
		}
	}
	if len(cfg.Interface.DNS) != 1 || cfg.Interface.DNS[0] != netip.MustParseAddr("1.1.1.1") {
		t.Errorf("dns = %v", cfg.Interface.DNS)
	}
	if len(cfg.Interface.DNSSearch) != 1 || cfg.Interface.DNSSearch[0] != "corp.example" {
		t.Errorf("dns search = %v", cfg.Interface.DNSSearch)
	}
	if cfg.Interface.ListenPort != 51000 || cfg.Interface.MTU != 1380 {
		t.Errorf("listen port %d, mtu %d", cfg.Interface.ListenPort, cfg.Interface.MTU)
	}

	if len(cfg.Peers) != 1 {
		t.Fatalf("peers = %d, want 1", len(cfg.Peers))
	}
	peer := cfg.Peers[0]
	if peer.PublicKey.String() != testPublicKey || peer.PresharedKey.String() != testPSK {
		t.Errorf("peer keys = %s / %s", peer.PublicKey, peer.PresharedKey)
	}
	if peer.PersistentKeepalive != 25 {
		t.Errorf("keepalive = %d", peer.PersistentKeepalive)
	}
	if len(peer.AllowedIPs) != 2 {
		t.Errorf("allowed ips = %v", peer.AllowedIPs)
	}
	if got := cfg.Endpoint(); got != "203.0.113.7:51820" {
		t.Errorf("Endpoint() = %q", got)
	}
}

func TestParseCaseInsensitiveKeys(t *testing.T) {
	text := "[interface]\nprivatekey=" + testPrivateKey + "\n[PEER]\npublickey = " + testPublicKey +
		"\nENDPOINT = [2001:db8::1]:443\npersistentkeepalive = off\n"
	cfg, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.Endpoint(); got != "[2001:db8::1]:443" {
		t.Errorf("Endpoint() = %q", got)
	}
	if cfg.Peers[0].PersistentKeepalive != 0 {
		t.Errorf("keepalive = %d, want 0", cfg.Peers[0].PersistentKeepalive)
	}
}

func TestParseNoPeersHasEmptyEndpoint(t *testing.T) {
	cfg, err := Parse("[Interface]\nPrivateKey = " + testPrivateKey + "\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Endpoint() != "" {
		t.Errorf("Endpoint() = %q, want empty", cfg.Endpoint())
	}
}

func TestEndpointUsesFirstPeerOnly(t *testing.T) {
	text := "[Interface]\nPrivateKey = " + testPrivateKey + "\n" +
		"\n[Peer]\nPublicKey = " + testPublicKey + "\nAllowedIPs = 10.0.0.0/8\n" +
		"\n[Peer]\nPublicKey = " + testPublicKey + "\nEndpoint = 198.51.100.2:51820\nAllowedIPs = 0.0.0.0/0\n"
	cfg, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Peers) != 2 {
		t.Fatalf("peers = %d", len(cfg.Peers))
	}
	if got := cfg.Endpoint(); got != "" {
		t.Errorf("Endpoint() = %q, want empty", got)
	}
}

func TestParseErrors(t *testing.T) {
	iface := "[Interface]\nPrivateKey = " + testPrivateKey + "\n"
	peer := "[Peer]\nPublicKey = " + testPublicKey + "\n"

	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", ErrMissingInterface},
		{"garbage", "this is not a wireguard config", ErrOutsideSection},
		{"only peer", peer, ErrMissingInterface},
		{"two interfaces", iface + iface, ErrDuplicateInterface},
		{"unknown section", iface + "[Server]\n", ErrUnknownSection},
		{"missing private key", "[Interface]\nAddress = 10.0.0.2/32\n", ErrMissingKey},
		{"missing public key", iface + "[Peer]\nEndpoint = 1.2.3.4:51820\n", ErrMissingKey},
		{"bad private key", "[Interface]\nPrivateKey = XXXX=\n", ErrInvalidValue},
		{"placeholder key", "[Interface]\nPrivateKey = " + strings.Repeat("X", 56) + "=\n", ErrInvalidValue},
		{"bad address", iface + "Address = 10.0.0.300/24\n", ErrInvalidValue},
		{"bad endpoint", iface + peer + "Endpoint = nohostport\n", ErrInvalidValue},
		{"zero port", iface + peer + "Endpoint = host:0\n", ErrInvalidValue},
		{"bad keepalive", iface + peer + "PersistentKeepalive = forever\n", ErrInvalidValue},
		{"bad mtu", iface + "MTU = 100\n", ErrInvalidValue},
		{"unknown key", iface + "Color = blue\n", ErrUnknownKey},
		{"duplicate key", iface + "ListenPort = 1\nListenPort = 2\n", ErrDuplicateKey},
		{"no equals", iface + "PrivateKey\n", ErrSyntax},
		{"unterminated header", "[Interface\n", ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse(tt.text)
			if err == nil {
				t.Fatalf("Parse succeeded: %+v", cfg)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a *ParseError", err)
			}
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	_, err := Parse("[Interface]\nPrivateKey = " + testPrivateKey + "\nColor = blue\n")
	if err == nil {
		t.Fatal("expected error")
	}
	if got, want := err.Error(), "line 3: [Interface] Color: unknown attribute"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestStringParsesBack(t *testing.T) {
	cfg, err := Parse(fullConfig)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	again, err := Parse(cfg.String())
	if err != nil {
		t.Fatalf("Parse(String()): %v\n%s", err, cfg.String())
	}
	if again.String() != cfg.String() {
		t.Fatalf("rendered configs differ:\n%s\n---\n%s", cfg.String(), again.String())
	}
}
