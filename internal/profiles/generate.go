package profiles

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"

	"github.com/user/oneclick-vpn/internal/wgconf"
)

// Stub renders the placeholder configuration of the n-th profile with fresh
// keys. Endpoints are in the 203.0.113.0/24 documentation range.
func Stub(n int) (string, error) {
	client, err := wgconf.GeneratePrivateKey()
	if err != nil {
		return "", err
	}
	server, err := wgconf.GeneratePrivateKey()
	if err != nil {
		return "", err
	}
	serverPublic, err := server.PublicKey()
	if err != nil {
		return "", err
	}

	cfg := wgconf.Config{
		Interface: wgconf.Interface{
			PrivateKey: client,
			Addresses:  []netip.Prefix{netip.PrefixFrom(netip.AddrFrom4([4]byte{10, 77, 0, byte(n + 1)}), 32)},
			DNS:        []netip.Addr{netip.AddrFrom4([4]byte{1, 1, 1, 1})},
		},
		Peers: []wgconf.Peer{{
			PublicKey:           serverPublic,
			Endpoint:            &wgconf.Endpoint{Host: fmt.Sprintf("203.0.113.%d", n), Port: 51820},
			AllowedIPs:          []netip.Prefix{netip.MustParsePrefix("0.0.0.0/0"), netip.MustParsePrefix("::/0")},
			PersistentKeepalive: 25,
		}},
	}
	return cfg.String(), nil
}

// GenerateStubs writes all placeholder profiles under dir/wg, overwriting
// existing files.
func GenerateStubs(dir string) error {
	target := filepath.Join(dir, Dir)
	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	for n := 1; n <= Count; n++ {
		text, err := Stub(n)
		if err != nil {
			return fmt.Errorf("failed to generate keys: %w", err)
		}
		file := filepath.Join(dir, filepath.FromSlash(Name(n)))
		if err := os.WriteFile(file, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file, err)
		}
	}
	return nil
}
