package tunnel

import (
	"context"
	"fmt"
	"time"

	"github.com/user/oneclick-vpn/internal/logger"
	"github.com/user/oneclick-vpn/internal/wgconf"
)

var wireGuardDefaults = Options{
	SetupDelay: 300 * time.Millisecond,
	Interval:   time.Second,
}

// Synthetic per-interval increments. The engine's own transfer counters are
// not read.
const (
	rxPerInterval = 1024
	txPerInterval = 512
)

// WireGuardController parses WireGuard configuration and hands it to an
// Engine. A nil engine only validates the configuration.
type WireGuardController struct {
	*machine

	engine   Engine
	engineUp bool // guarded by machine.mu
}

// NewWireGuard creates a controller backed by engine.
func NewWireGuard(engine Engine, opts Options) *WireGuardController {
	return &WireGuardController{
		machine: newMachine(opts.withDefaults(wireGuardDefaults)),
		engine:  engine,
	}
}

// Connect implements Controller.
func (c *WireGuardController) Connect(ctx context.Context, configText string) error {
	return c.connect(ctx, configText, c.up, c.down, func() (uint64, uint64) {
		return rxPerInterval, txPerInterval
	})
}

// Disconnect implements Controller.
func (c *WireGuardController) Disconnect(context.Context) error {
	c.disconnect(c.down)
	return nil
}

// Close implements Controller.
func (c *WireGuardController) Close() error {
	c.close(c.down)
	return nil
}

func (c *WireGuardController) up(ctx context.Context, cfg *wgconf.Config) (string, error) {
	if c.engine != nil {
		if err := c.engine.Up(ctx, cfg); err != nil {
			return "", fmt.Errorf("failed to start tunnel: %w", err)
		}
		c.engineUp = true
	}
	return cfg.Endpoint(), nil
}

func (c *WireGuardController) down() {
	if !c.engineUp {
		return
	}
	c.engineUp = false
	if err := c.engine.Down(); err != nil {
		logger.Warning("Failed to stop tunnel engine: %v", err)
	}
}
