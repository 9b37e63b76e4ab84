package core

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/user/oneclick-vpn/internal/config"
	"github.com/user/oneclick-vpn/internal/engine"
	"github.com/user/oneclick-vpn/internal/logger"
	"github.com/user/oneclick-vpn/internal/notify"
	"github.com/user/oneclick-vpn/internal/store"
	"github.com/user/oneclick-vpn/internal/tunnel"
)

// PrefsName is the base name of the encrypted preference files.
const PrefsName = "prefs"

// DataDir returns the directory holding preferences for cfg.
func DataDir(cfg *config.Config) (string, error) {
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(dir, "oneclick-vpn"), nil
}

// OpenRepository opens the encrypted profile repository described by cfg.
func OpenRepository(cfg *config.Config, assets fs.FS) (*store.Repository, error) {
	dir, err := DataDir(cfg)
	if err != nil {
		return nil, err
	}
	prefs, err := store.Open(dir, PrefsName)
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}
	return store.NewRepository(prefs, assets, cfg.DefaultProfile)
}

// NewController builds the controller selected by cfg.
func NewController(cfg *config.Config) tunnel.Controller {
	if cfg.Mode == config.ModeDemo {
		logger.Info("Demo mode: tunnel traffic is simulated")
		return tunnel.NewDemo(tunnel.Options{})
	}
	var eng tunnel.Engine
	if cfg.Engine == config.EngineKernel {
		eng = engine.NewKernel(cfg.Interface.Name, cfg.Interface.MTU)
	} else {
		logger.Info("Engine disabled: profiles are validated but no interface is created")
	}
	return tunnel.NewWireGuard(eng, tunnel.Options{})
}

// NewFromConfig wires a Service from configuration and the bundled assets.
func NewFromConfig(cfg *config.Config, assets fs.FS) (*Service, error) {
	logger.Info("VPN Service initializing (mode %s, engine %s)...", cfg.Mode, cfg.Engine)

	repo, err := OpenRepository(cfg, assets)
	if err != nil {
		logger.Error("Failed to open repository: %v", err)
		return nil, err
	}

	s, err := NewService(Options{
		Controller: NewController(cfg),
		Repository: repo,
		Notifier:   notify.New(cfg.Notifications),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("VPN Service initialized, selected profile %s", repo.SelectedProfile())
	return s, nil
}
