package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("defaults not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v", info.Mode().Perm())
	}
	if cfg.Mode != ModeWireGuard || cfg.DefaultProfile != "wg/client01.conf" || cfg.API.Listen != DefaultAPIListen {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nmode: demo\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != ModeDemo {
		t.Errorf("mode = %s", cfg.Mode)
	}
	if cfg.Interface.MTU != 1420 || !cfg.Notifications {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\ndefault_profile: wg/client99.conf\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := NewManager(path).Load()
	if err == nil || !strings.Contains(err.Error(), "default_profile") {
		t.Fatalf("Load = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"demo", func(c *Config) { c.Mode = ModeDemo }, true},
		{"bad mode", func(c *Config) { c.Mode = "turbo" }, false},
		{"bad engine", func(c *Config) { c.Engine = "userspace" }, false},
		{"short profile id", func(c *Config) { c.DefaultProfile = "client07" }, true},
		{"public api", func(c *Config) { c.API.Listen = "0.0.0.0:8787" }, false},
		{"api disabled", func(c *Config) { c.API = API{} }, true},
		{"named pipe", func(c *Config) { c.API.Listen = `\\.\pipe\OneClickVPN` }, true},
		{"unix socket", func(c *Config) { c.API.Listen = "unix:/run/oneclick-vpn.sock" }, true},
		{"bare unix prefix", func(c *Config) { c.API.Listen = "unix:" }, false},
		{"small mtu", func(c *Config) { c.Interface.MTU = 100 }, false},
		{"no interface name", func(c *Config) { c.Interface.Name = "" }, false},
		{"version 0", func(c *Config) { c.Version = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok != (err == nil) {
				t.Fatalf("Validate = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestLoadWrittenDefaultsReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	first, err := NewManager(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewManager(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if *first != *second {
		t.Fatalf("reloaded %+v, want %+v", second, first)
	}
}

func TestLoadEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		data string
		err  string
	}{
		{"empty file", "", ""},
		{"unknown field", "version: 1\nmdoe: demo\n", "mdoe"},
		{"malformed", "version: [1\n", "failed to parse"},
		{"wrong type", "version: 1\nnotifications: maybe\n", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0600); err != nil {
				t.Fatal(err)
			}
			cfg, err := NewManager(path).Load()
			if tt.err == "" {
				if err != nil || *cfg != *DefaultConfig() {
					t.Fatalf("Load = %+v, %v", cfg, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.err) {
				t.Fatalf("Load = %v, want error containing %q", err, tt.err)
			}
		})
	}
}
