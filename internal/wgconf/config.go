// Package wgconf parses and renders WireGuard configuration files
// ([Interface] and [Peer] sections) and converts them to the wireguard-go
// IPC format.
package wgconf

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// Config is a parsed WireGuard configuration.
type Config struct {
	Interface Interface
	Peers     []Peer
}

// Interface is the [Interface] section.
type Interface struct {
	PrivateKey Key
	Addresses  []netip.Prefix
	DNS        []netip.Addr
	DNSSearch  []string
	ListenPort uint16
	MTU        int
}

// Peer is a [Peer] section.
type Peer struct {
	PublicKey           Key
	PresharedKey        Key
	Endpoint            *Endpoint
	AllowedIPs          []netip.Prefix
	PersistentKeepalive uint16
}

// Endpoint is a peer's host:port. Host may be a name or an IP literal.
type Endpoint struct {
	Host string
	Port uint16
}

// ParseEndpoint parses "host:port" or "[v6]:port".
func ParseEndpoint(s string) (*Endpoint, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return nil, err
	}
	if host == "" {
		return nil, fmt.Errorf("missing host in %q", s)
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil || p == 0 {
		return nil, fmt.Errorf("invalid port in %q", s)
	}
	return &Endpoint{Host: host, Port: uint16(p)}, nil
}

// String returns the endpoint in host:port form, bracketing IPv6 literals.
func (e *Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port)))
}

// Resolve returns the endpoint address, looking the host up when it is a
// name. IPv4 results are preferred.
func (e *Endpoint) Resolve(ctx context.Context) (netip.AddrPort, error) {
	if addr, err := netip.ParseAddr(e.Host); err == nil {
		return netip.AddrPortFrom(addr.Unmap(), e.Port), nil
	}

	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", e.Host)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("failed to resolve %s: %w", e.Host, err)
	}
	if len(addrs) == 0 {
		return netip.AddrPort{}, fmt.Errorf("no IP addresses found for %s", e.Host)
	}
	chosen := addrs[0]
	for _, a := range addrs {
		if a.Unmap().Is4() {
			chosen = a
			break
		}
	}
	return netip.AddrPortFrom(chosen.Unmap(), e.Port), nil
}

// Endpoint returns the endpoint of the first peer, or "" when there are no
// peers or the first one has none. Later peers are not consulted.
func (c *Config) Endpoint() string {
	if len(c.Peers) == 0 || c.Peers[0].Endpoint == nil {
		return ""
	}
	return c.Peers[0].Endpoint.String()
}

// String renders the configuration in wg-quick file format.
func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("[Interface]\n")
	fmt.Fprintf(&b, "PrivateKey = %s\n", c.Interface.PrivateKey)
	if len(c.Interface.Addresses) > 0 {
		fmt.Fprintf(&b, "Address = %s\n", joinPrefixes(c.Interface.Addresses))
	}
	if dns := c.dnsList(); len(dns) > 0 {
		fmt.Fprintf(&b, "DNS = %s\n", strings.Join(dns, ", "))
	}
	if c.Interface.ListenPort > 0 {
		fmt.Fprintf(&b, "ListenPort = %d\n", c.Interface.ListenPort)
	}
	if c.Interface.MTU > 0 {
		fmt.Fprintf(&b, "MTU = %d\n", c.Interface.MTU)
	}

	for _, p := range c.Peers {
		b.WriteString("\n[Peer]\n")
		fmt.Fprintf(&b, "PublicKey = %s\n", p.PublicKey)
		if !p.PresharedKey.IsZero() {
			fmt.Fprintf(&b, "PresharedKey = %s\n", p.PresharedKey)
		}
		if p.Endpoint != nil {
			fmt.Fprintf(&b, "Endpoint = %s\n", p.Endpoint)
		}
		if len(p.AllowedIPs) > 0 {
			fmt.Fprintf(&b, "AllowedIPs = %s\n", joinPrefixes(p.AllowedIPs))
		}
		if p.PersistentKeepalive > 0 {
			fmt.Fprintf(&b, "PersistentKeepalive = %d\n", p.PersistentKeepalive)
		}
	}
	return b.String()
}

func (c *Config) dnsList() []string {
	out := make([]string, 0, len(c.Interface.DNS)+len(c.Interface.DNSSearch))
	for _, a := range c.Interface.DNS {
		out = append(out, a.String())
	}
	return append(out, c.Interface.DNSSearch...)
}

func joinPrefixes(prefixes []netip.Prefix) string {
	parts := make([]string, len(prefixes))
	for i, p := range prefixes {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
