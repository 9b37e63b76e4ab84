package tunnel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/user/oneclick-vpn/internal/logger"
	"github.com/user/oneclick-vpn/internal/observe"
	"github.com/user/oneclick-vpn/internal/wgconf"
)

// ErrClosed is returned by Connect after the controller was closed.
var ErrClosed = errors.New("tunnel controller closed")

// Controller drives one tunnel through its lifecycle.
type Controller interface {
	// State returns the current state.
	State() State

	// Subscribe returns a subscription that receives the current state and
	// every later transition.
	Subscribe(buffer int) *observe.Subscription[State]

	// Connect parses configText and brings the tunnel up. Parse failures
	// leave the controller in the error state and are returned.
	Connect(ctx context.Context, configText string) error

	// Disconnect tears the tunnel down. It is safe to call in any state.
	Disconnect(ctx context.Context) error

	// Close disconnects and releases the controller.
	Close() error
}

// Engine establishes the actual tunnel for a parsed configuration.
type Engine interface {
	Up(ctx context.Context, cfg *wgconf.Config) error
	Down() error
}

// Options tunes controller timing. Zero fields take the controller default.
type Options struct {
	SetupDelay time.Duration // pause between Connecting and Connected
	Interval   time.Duration // counter update period
}

func (o Options) withDefaults(def Options) Options {
	if o.SetupDelay <= 0 {
		o.SetupDelay = def.SetupDelay
	}
	if o.Interval <= 0 {
		o.Interval = def.Interval
	}
	return o
}

// counterFunc returns the next rx/tx increments.
type counterFunc func() (rx, tx uint64)

// machine is the transition core shared by the controllers.
type machine struct {
	mu    sync.Mutex // serializes connect/disconnect
	state *observe.Value[State]
	opts  Options

	ctx    context.Context // controller lifetime
	cancel context.CancelFunc
	closed bool

	pendingMu sync.Mutex
	pending   context.CancelFunc
	attempt   uint64

	loopCancel context.CancelFunc
	loopDone   chan struct{}
}

func newMachine(opts Options) *machine {
	ctx, cancel := context.WithCancel(context.Background())
	return &machine{
		state:  observe.NewValue(Disconnected()),
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
	}
}

// State returns the current state.
func (m *machine) State() State {
	return m.state.Get()
}

// Subscribe returns a subscription to state transitions.
func (m *machine) Subscribe(buffer int) *observe.Subscription[State] {
	return m.state.Subscribe(buffer)
}

func (m *machine) publish(s State) {
	m.state.Set(s)
}

// beginAttempt registers a connect attempt that Disconnect or a newer
// Connect can abort. Must be called with mu held.
func (m *machine) beginAttempt(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	m.pendingMu.Lock()
	m.attempt++
	id := m.attempt
	m.pending = cancel
	m.pendingMu.Unlock()

	return ctx, func() {
		m.pendingMu.Lock()
		if m.attempt == id {
			m.pending = nil
		}
		m.pendingMu.Unlock()
		cancel()
	}
}

// abortPending cancels an in-flight connect attempt, if any.
func (m *machine) abortPending() {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	if m.pending != nil {
		m.pending()
		m.pending = nil
	}
}

// connect runs the Connecting -> Connected sequence. up brings the engine up
// and returns the endpoint to report; down undoes a previous up.
func (m *machine) connect(
	parent context.Context,
	configText string,
	up func(ctx context.Context, cfg *wgconf.Config) (string, error),
	down func(),
	counter counterFunc,
) error {
	m.abortPending()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	m.stopLoop()
	down()

	ctx, done := m.beginAttempt(parent)
	defer done()

	m.publish(Connecting())

	cfg, err := wgconf.Parse(configText)
	if err != nil {
		logger.Error("Invalid WireGuard configuration: %v", err)
		m.publish(Failed(err.Error()))
		return err
	}

	timer := time.NewTimer(m.opts.SetupDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		m.abandoned(parent)
		return ctx.Err()
	}

	endpoint, err := up(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			m.abandoned(parent)
			return ctx.Err()
		}
		logger.Error("Failed to start tunnel: %v", err)
		m.publish(Failed(err.Error()))
		return err
	}
	if ctx.Err() != nil {
		down()
		m.abandoned(parent)
		return ctx.Err()
	}

	m.publish(Connected(endpoint, 0, 0))
	logger.Connection("Tunnel connected to %s", endpoint)
	m.startLoop(endpoint, counter)
	return nil
}

// abandoned handles an aborted attempt. When the caller gave up the tunnel
// returns to Disconnected; an abort from Disconnect or a newer Connect
// leaves publishing to them.
func (m *machine) abandoned(parent context.Context) {
	if parent.Err() != nil {
		m.publish(Disconnected())
	}
}

// disconnect cancels everything and publishes Disconnected.
func (m *machine) disconnect(down func()) {
	m.abortPending()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLoop()
	down()
	if m.State().Status != StatusDisconnected {
		logger.Connection("Tunnel disconnected")
	}
	m.publish(Disconnected())
}

// close disconnects and ends the controller lifetime.
func (m *machine) close(down func()) {
	m.disconnect(down)

	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cancel()
}

// startLoop starts the counter loop. Must be called with mu held.
func (m *machine) startLoop(endpoint string, counter counterFunc) {
	ctx, cancel := context.WithCancel(m.ctx)
	done := make(chan struct{})
	m.loopCancel = cancel
	m.loopDone = done

	go func() {
		defer close(done)
		defer logger.Recover("tunnelCounters")

		ticker := time.NewTicker(m.opts.Interval)
		defer ticker.Stop()

		var rx, tx uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if ctx.Err() != nil {
				return
			}
			drx, dtx := counter()
			rx += drx
			tx += dtx
			m.publish(Connected(endpoint, rx, tx))
		}
	}()
}

// stopLoop cancels the counter loop and waits for it to exit, so no counter
// update can follow. Must be called with mu held.
func (m *machine) stopLoop() {
	if m.loopCancel == nil {
		return
	}
	m.loopCancel()
	<-m.loopDone
	m.loopCancel = nil
	m.loopDone = nil
}
