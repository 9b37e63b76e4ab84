package wgconf

import (
	"fmt"
	"net/netip"
	"strings"
)

// UAPI renders the configuration as wireguard-go IPC "set" text.
// resolved holds the resolved endpoint of each peer by index; peers with a
// missing or invalid entry are configured without an endpoint.
func (c *Config) UAPI(resolved []netip.AddrPort) string {
	var b strings.Builder

	fmt.Fprintf(&b, "private_key=%s\n", c.Interface.PrivateKey.Hex())
	if c.Interface.ListenPort > 0 {
		fmt.Fprintf(&b, "listen_port=%d\n", c.Interface.ListenPort)
	}
	b.WriteString("replace_peers=true\n")

	for i, p := range c.Peers {
		fmt.Fprintf(&b, "public_key=%s\n", p.PublicKey.Hex())
		if !p.PresharedKey.IsZero() {
			fmt.Fprintf(&b, "preshared_key=%s\n", p.PresharedKey.Hex())
		}
		if i < len(resolved) && resolved[i].IsValid() {
			fmt.Fprintf(&b, "endpoint=%s\n", resolved[i])
		}
		if p.PersistentKeepalive > 0 {
			fmt.Fprintf(&b, "persistent_keepalive_interval=%d\n", p.PersistentKeepalive)
		}
		b.WriteString("replace_allowed_ips=true\n")
		for _, prefix := range p.AllowedIPs {
			fmt.Fprintf(&b, "allowed_ip=%s\n", prefix)
		}
	}
	return b.String()
}
