package config

import (
	"fmt"
	"net/netip"

	"github.com/user/oneclick-vpn/internal/profiles"
)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Version < 1 {
		return fmt.Errorf("invalid config version")
	}

	switch c.Mode {
	case ModeWireGuard, ModeDemo:
	default:
		return fmt.Errorf("unknown mode: %s", c.Mode)
	}

	switch c.Engine {
	case EngineKernel, EngineNone:
	default:
		return fmt.Errorf("unknown engine: %s", c.Engine)
	}

	if !profiles.Exists(c.DefaultProfile) {
		return fmt.Errorf("default_profile: %w: %q", profiles.ErrUnknownProfile, c.DefaultProfile)
	}

	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api config: %w", err)
	}

	if err := c.Interface.Validate(); err != nil {
		return fmt.Errorf("interface config: %w", err)
	}

	return nil
}

// Validate validates the control server configuration.
func (a *API) Validate() error {
	if !a.Enabled {
		return nil
	}
	if IsSocketAddress(a.Listen) {
		if a.Listen == PipePrefix || a.Listen == UnixPrefix {
			return fmt.Errorf("invalid listen address: %s", a.Listen)
		}
		return nil
	}
	addr, err := netip.ParseAddrPort(a.Listen)
	if err != nil {
		return fmt.Errorf("invalid listen address: %s", a.Listen)
	}
	if !addr.Addr().IsLoopback() {
		return fmt.Errorf("listen address must be loopback: %s", a.Listen)
	}
	return nil
}

// Validate validates interface configuration.
func (i *Interface) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("name is required")
	}
	if i.MTU < 576 || i.MTU > 65535 {
		return fmt.Errorf("mtu must be between 576 and 65535")
	}
	return nil
}
