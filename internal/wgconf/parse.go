package wgconf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strconv"
	"strings"
)

var (
	ErrMissingInterface   = errors.New("missing [Interface] section")
	ErrDuplicateInterface = errors.New("multiple [Interface] sections")
	ErrUnknownSection     = errors.New("unknown section")
	ErrOutsideSection     = errors.New("line outside of any section")
	ErrSyntax             = errors.New("syntax error")
	ErrMissingKey         = errors.New("missing required attribute")
	ErrUnknownKey         = errors.New("unknown attribute")
	ErrDuplicateKey       = errors.New("duplicate attribute")
	ErrInvalidValue       = errors.New("invalid value")
)

// ParseError describes where parsing failed.
type ParseError struct {
	Line    int // 0 when the error applies to a whole section
	Section string
	Key     string
	Err     error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	if e.Section != "" {
		fmt.Fprintf(&b, "[%s] ", e.Section)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, "%s: ", e.Key)
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse parses WireGuard configuration text.
func Parse(text string) (*Config, error) {
	return ParseReader(strings.NewReader(text))
}

// ParseReader parses WireGuard configuration from r.
func ParseReader(r io.Reader) (*Config, error) {
	p := &parser{cfg: &Config{}}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p.line++
		if err := p.handle(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := p.finishSection(); err != nil {
		return nil, err
	}
	if !p.sawInterface {
		return nil, &ParseError{Err: ErrMissingInterface}
	}
	return p.cfg, nil
}

type parser struct {
	cfg          *Config
	line         int
	section      string // "interface", "peer" or ""
	sawInterface bool
	peer         *Peer
	seen         map[string]bool
}

func (p *parser) handle(raw string) error {
	line := raw
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if strings.HasPrefix(line, "[") {
		if !strings.HasSuffix(line, "]") {
			return p.errorf("", ErrSyntax)
		}
		return p.startSection(strings.TrimSpace(line[1 : len(line)-1]))
	}

	if p.section == "" {
		return p.errorf("", ErrOutsideSection)
	}

	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return p.errorf("", ErrSyntax)
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	lower := strings.ToLower(key)
	if p.seen[lower] && !isListKey(lower) {
		return p.errorf(key, ErrDuplicateKey)
	}
	p.seen[lower] = true

	if p.section == "interface" {
		return p.interfaceKey(key, lower, value)
	}
	return p.peerKey(key, lower, value)
}

func (p *parser) startSection(name string) error {
	if err := p.finishSection(); err != nil {
		return err
	}
	p.seen = make(map[string]bool)

	switch strings.ToLower(name) {
	case "interface":
		if p.sawInterface {
			return p.errorf("", ErrDuplicateInterface)
		}
		p.sawInterface = true
		p.section = "interface"
	case "peer":
		p.section = "peer"
		p.peer = &Peer{}
	default:
		return &ParseError{Line: p.line, Section: name, Err: ErrUnknownSection}
	}
	return nil
}

func (p *parser) finishSection() error {
	switch p.section {
	case "interface":
		if !p.seen["privatekey"] {
			return &ParseError{Section: "Interface", Key: "PrivateKey", Err: ErrMissingKey}
		}
	case "peer":
		if !p.seen["publickey"] {
			return &ParseError{Section: "Peer", Key: "PublicKey", Err: ErrMissingKey}
		}
		p.cfg.Peers = append(p.cfg.Peers, *p.peer)
		p.peer = nil
	}
	p.section = ""
	return nil
}

func (p *parser) interfaceKey(key, lower, value string) error {
	iface := &p.cfg.Interface
	switch lower {
	case "privatekey":
		k, err := ParseKey(value)
		if err != nil {
			return p.invalid(key, err)
		}
		iface.PrivateKey = k
	case "address":
		prefixes, err := parsePrefixList(value)
		if err != nil {
			return p.invalid(key, err)
		}
		iface.Addresses = append(iface.Addresses, prefixes...)
	case "dns":
		for _, item := range splitList(value) {
			if addr, err := netip.ParseAddr(item); err == nil {
				iface.DNS = append(iface.DNS, addr)
				continue
			}
			if strings.ContainsAny(item, " /:") {
				return p.invalid(key, fmt.Errorf("bad DNS entry %q", item))
			}
			iface.DNSSearch = append(iface.DNSSearch, item)
		}
	case "listenport":
		port, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return p.invalid(key, err)
		}
		iface.ListenPort = uint16(port)
	case "mtu":
		mtu, err := strconv.Atoi(value)
		if err != nil {
			return p.invalid(key, err)
		}
		if mtu < 576 || mtu > 65535 {
			return p.invalid(key, fmt.Errorf("mtu must be between 576 and 65535"))
		}
		iface.MTU = mtu
	default:
		return p.errorf(key, ErrUnknownKey)
	}
	return nil
}

func (p *parser) peerKey(key, lower, value string) error {
	peer := p.peer
	switch lower {
	case "publickey":
		k, err := ParseKey(value)
		if err != nil {
			return p.invalid(key, err)
		}
		peer.PublicKey = k
	case "presharedkey":
		k, err := ParseKey(value)
		if err != nil {
			return p.invalid(key, err)
		}
		peer.PresharedKey = k
	case "endpoint":
		ep, err := ParseEndpoint(value)
		if err != nil {
			return p.invalid(key, err)
		}
		peer.Endpoint = ep
	case "allowedips":
		prefixes, err := parsePrefixList(value)
		if err != nil {
			return p.invalid(key, err)
		}
		peer.AllowedIPs = append(peer.AllowedIPs, prefixes...)
	case "persistentkeepalive":
		if strings.EqualFold(value, "off") {
			peer.PersistentKeepalive = 0
			return nil
		}
		n, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return p.invalid(key, err)
		}
		peer.PersistentKeepalive = uint16(n)
	default:
		return p.errorf(key, ErrUnknownKey)
	}
	return nil
}

func (p *parser) sectionName() string {
	switch p.section {
	case "interface":
		return "Interface"
	case "peer":
		return "Peer"
	}
	return ""
}

func (p *parser) errorf(key string, err error) error {
	return &ParseError{Line: p.line, Section: p.sectionName(), Key: key, Err: err}
}

func (p *parser) invalid(key string, cause error) error {
	return p.errorf(key, fmt.Errorf("%w: %v", ErrInvalidValue, cause))
}

func isListKey(lower string) bool {
	switch lower {
	case "address", "dns", "allowedips":
		return true
	}
	return false
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parsePrefixList accepts CIDRs and bare addresses (treated as host prefixes).
func parsePrefixList(value string) ([]netip.Prefix, error) {
	items := splitList(value)
	out := make([]netip.Prefix, 0, len(items))
	for _, item := range items {
		if prefix, err := netip.ParsePrefix(item); err == nil {
			out = append(out, prefix)
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid IP/CIDR %q", item)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
