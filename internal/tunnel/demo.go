package tunnel

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/user/oneclick-vpn/internal/wgconf"
)

// DemoEndpoint is the endpoint reported by the demo controller.
const DemoEndpoint = "demo.endpoint:51820"

var demoDefaults = Options{
	SetupDelay: 800 * time.Millisecond,
	Interval:   500 * time.Millisecond,
}

// DemoController fabricates a tunnel: the configuration is parsed but no
// engine is started, and traffic counters grow by random amounts.
type DemoController struct {
	*machine
}

// NewDemo creates a demo controller.
func NewDemo(opts Options) *DemoController {
	return &DemoController{machine: newMachine(opts.withDefaults(demoDefaults))}
}

// Connect implements Controller.
func (c *DemoController) Connect(ctx context.Context, configText string) error {
	return c.connect(ctx, configText,
		func(context.Context, *wgconf.Config) (string, error) {
			return DemoEndpoint, nil
		},
		func() {},
		func() (uint64, uint64) {
			return 2000 + rand.Uint64N(8000), 1000 + rand.Uint64N(4000)
		},
	)
}

// Disconnect implements Controller.
func (c *DemoController) Disconnect(context.Context) error {
	c.disconnect(func() {})
	return nil
}

// Close implements Controller.
func (c *DemoController) Close() error {
	c.close(func() {})
	return nil
}
