//go:build linux

package config

import (
	"os"
	"path/filepath"
)

// GetConfigPath returns the configuration path in the user config directory.
func GetConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "oneclick-vpn", "config.yaml")
}

// defaultInterfaceName returns the default TUN interface name for Linux.
func defaultInterfaceName() string {
	return "oneclick0"
}

// DefaultAPIListen is the loopback address of the control server.
const DefaultAPIListen = "127.0.0.1:8787"
