// Package config handles application configuration loading, saving, and validation.
package config

import "strings"

// Mode selects the tunnel controller.
type Mode string

const (
	// ModeWireGuard parses profiles and runs them through the engine.
	ModeWireGuard Mode = "wireguard"
	// ModeDemo fabricates a tunnel without touching the network.
	ModeDemo Mode = "demo"
)

// Engine selects the native backend used in wireguard mode.
type Engine string

const (
	// EngineKernel runs wireguard-go on an OS TUN interface (needs admin rights).
	EngineKernel Engine = "kernel"
	// EngineNone only validates profiles; no interface is created.
	EngineNone Engine = "none"
)

// Config represents the main configuration structure.
type Config struct {
	Version        int       `yaml:"version"`
	Mode           Mode      `yaml:"mode"`
	Engine         Engine    `yaml:"engine"`
	DefaultProfile string    `yaml:"default_profile"`
	DataDir        string    `yaml:"data_dir,omitempty"` // empty = user config dir
	Notifications  bool      `yaml:"notifications"`
	API            API       `yaml:"api"`
	Interface      Interface `yaml:"interface"`
}

// API configures the local control server.
type API struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Interface configuration for the VPN adapter.
type Interface struct {
	Name string `yaml:"name"`
	MTU  int    `yaml:"mtu"`
}

// Local socket address forms accepted for api.listen besides host:port.
const (
	PipePrefix = `\\.\pipe\`
	UnixPrefix = "unix:"
)

// IsSocketAddress reports whether addr names a Windows named pipe or a Unix
// socket rather than a TCP address.
func IsSocketAddress(addr string) bool {
	return strings.HasPrefix(addr, PipePrefix) || strings.HasPrefix(addr, UnixPrefix)
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version:        1,
		Mode:           ModeWireGuard,
		Engine:         EngineKernel,
		DefaultProfile: "wg/client01.conf",
		Notifications:  true,
		API: API{
			Enabled: true,
			Listen:  DefaultAPIListen,
		},
		Interface: Interface{
			Name: defaultInterfaceName(),
			MTU:  1420,
		},
	}
}
