package tunnel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/user/oneclick-vpn/internal/observe"
	"github.com/user/oneclick-vpn/internal/wgconf"
)

var (
	_ Controller = (*DemoController)(nil)
	_ Controller = (*WireGuardController)(nil)
)

const client07 = `[Interface]
PrivateKey = yAnz5TF+lXXJte14tji3zlMNq+hd2rYUIgJBgB3fBmk=
Address = 10.77.0.8/32
DNS = 1.1.1.1

[Peer]
PublicKey = xTIBA5rboUvnH4htodjb6e697QjLERt1NAB4mZqp8Dg=
Endpoint = 203.0.113.7:51820
AllowedIPs = 0.0.0.0/0, ::/0
PersistentKeepalive = 25
`

var fast = Options{SetupDelay: 5 * time.Millisecond, Interval: 5 * time.Millisecond}

// next reads one state or fails after a timeout.
func next(t *testing.T, sub *observe.Subscription[State]) State {
	t.Helper()
	select {
	case s, ok := <-sub.C():
		if !ok {
			t.Fatal("subscription closed")
		}
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state")
	}
	return State{}
}

// until reads states until match returns true and returns everything read.
func until(t *testing.T, sub *observe.Subscription[State], match func(State) bool) []State {
	t.Helper()
	var seen []State
	for {
		s := next(t, sub)
		seen = append(seen, s)
		if match(s) {
			return seen
		}
	}
}

// quiet fails if any state arrives within d.
func quiet(t *testing.T, sub *observe.Subscription[State], d time.Duration) {
	t.Helper()
	select {
	case s := <-sub.C():
		t.Fatalf("unexpected state after disconnect: %v", s)
	case <-time.After(d):
	}
}

func TestWireGuardConnectDisconnectSequence(t *testing.T) {
	c := NewWireGuard(nil, fast)
	defer c.Close()

	sub := c.Subscribe(256)
	defer sub.Close()

	if s := next(t, sub); s != Disconnected() {
		t.Fatalf("initial state = %v", s)
	}

	if err := c.Connect(context.Background(), client07); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if s := next(t, sub); s != Connecting() {
		t.Fatalf("first transition = %v, want connecting", s)
	}
	if s := next(t, sub); s != Connected("203.0.113.7:51820", 0, 0) {
		t.Fatalf("second transition = %v, want connected with zero counters", s)
	}

	var prev State
	prev.Status = StatusConnected
	for i := 0; i < 4; i++ {
		s := next(t, sub)
		if s.Status != StatusConnected || s.Endpoint != "203.0.113.7:51820" {
			t.Fatalf("update %d = %v", i, s)
		}
		if s.RxBytes <= prev.RxBytes || s.TxBytes <= prev.TxBytes {
			t.Fatalf("counters did not grow: %v after %v", s, prev)
		}
		if s.RxBytes%rxPerInterval != 0 || s.TxBytes%txPerInterval != 0 {
			t.Fatalf("unexpected increments: %v", s)
		}
		prev = s
	}

	if err := c.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	states := until(t, sub, func(s State) bool { return s.Status == StatusDisconnected })
	for _, s := range states[:len(states)-1] {
		if s.Status != StatusConnected {
			t.Fatalf("unexpected state before disconnect: %v", s)
		}
	}
	quiet(t, sub, 50*time.Millisecond)

	if c.State() != Disconnected() {
		t.Fatalf("State() = %v", c.State())
	}
}

func TestInvalidConfigNeverConnects(t *testing.T) {
	inputs := map[string]string{
		"garbage":     "definitely not a config",
		"no peer key": "[Interface]\nPrivateKey = yAnz5TF+lXXJte14tji3zlMNq+hd2rYUIgJBgB3fBmk=\n[Peer]\n",
		"empty":       "",
	}
	for name, text := range inputs {
		t.Run(name, func(t *testing.T) {
			c := NewWireGuard(nil, fast)
			defer c.Close()
			sub := c.Subscribe(64)
			defer sub.Close()

			err := c.Connect(context.Background(), text)
			if err == nil {
				t.Fatal("Connect succeeded")
			}
			var pe *wgconf.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %v is not a parse error", err)
			}

			states := until(t, sub, func(s State) bool { return s.Status == StatusError })
			for _, s := range states {
				if s.Status == StatusConnected {
					t.Fatalf("observed connected state %v", s)
				}
			}
			last := states[len(states)-1]
			if last.Message != err.Error() {
				t.Fatalf("error message = %q, want %q", last.Message, err.Error())
			}
			quiet(t, sub, 30*time.Millisecond)
		})
	}
}

func TestDisconnectFromEveryState(t *testing.T) {
	ctx := context.Background()

	t.Run("disconnected", func(t *testing.T) {
		c := NewWireGuard(nil, fast)
		defer c.Close()
		if err := c.Disconnect(ctx); err != nil {
			t.Fatal(err)
		}
		if c.State() != Disconnected() {
			t.Fatalf("state = %v", c.State())
		}
	})

	t.Run("error", func(t *testing.T) {
		c := NewWireGuard(nil, fast)
		defer c.Close()
		_ = c.Connect(ctx, "bad")
		if c.State().Status != StatusError {
			t.Fatalf("state = %v", c.State())
		}
		_ = c.Disconnect(ctx)
		if c.State() != Disconnected() {
			t.Fatalf("state = %v", c.State())
		}
	})

	t.Run("connecting", func(t *testing.T) {
		c := NewWireGuard(nil, Options{SetupDelay: time.Hour, Interval: time.Millisecond})
		defer c.Close()
		sub := c.Subscribe(64)
		defer sub.Close()

		errc := make(chan error, 1)
		go func() { errc <- c.Connect(ctx, client07) }()
		until(t, sub, func(s State) bool { return s.Status == StatusConnecting })

		if err := c.Disconnect(ctx); err != nil {
			t.Fatal(err)
		}
		select {
		case err := <-errc:
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("Connect returned %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Connect did not return after Disconnect")
		}

		states := until(t, sub, func(s State) bool { return s.Status == StatusDisconnected })
		for _, s := range states {
			if s.Status == StatusConnected {
				t.Fatalf("observed %v", s)
			}
		}
		quiet(t, sub, 30*time.Millisecond)
	})
}

func TestCallerCancelDuringSetup(t *testing.T) {
	c := NewWireGuard(nil, Options{SetupDelay: time.Hour})
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if err := c.Connect(ctx, client07); !errors.Is(err, context.Canceled) {
		t.Fatalf("Connect = %v, want context.Canceled", err)
	}
	if c.State() != Disconnected() {
		t.Fatalf("state = %v, want disconnected", c.State())
	}
}

type fakeEngine struct {
	mu    sync.Mutex
	upErr error
	ups   int
	downs int
	last  *wgconf.Config
}

func (e *fakeEngine) Up(_ context.Context, cfg *wgconf.Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.upErr != nil {
		return e.upErr
	}
	e.ups++
	e.last = cfg
	return nil
}

func (e *fakeEngine) Down() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.downs++
	return nil
}

func (e *fakeEngine) counts() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ups, e.downs
}

func TestEngineLifecycle(t *testing.T) {
	engine := &fakeEngine{}
	c := NewWireGuard(engine, fast)
	defer c.Close()
	ctx := context.Background()

	if err := c.Connect(ctx, client07); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if ups, downs := engine.counts(); ups != 1 || downs != 0 {
		t.Fatalf("after connect: ups=%d downs=%d", ups, downs)
	}
	if engine.last.Endpoint() != "203.0.113.7:51820" {
		t.Fatalf("engine got endpoint %q", engine.last.Endpoint())
	}

	// A second connect supersedes the first.
	if err := c.Connect(ctx, client07); err != nil {
		t.Fatalf("second Connect: %v", err)
	}
	if ups, downs := engine.counts(); ups != 2 || downs != 1 {
		t.Fatalf("after reconnect: ups=%d downs=%d", ups, downs)
	}

	_ = c.Disconnect(ctx)
	_ = c.Disconnect(ctx)
	if ups, downs := engine.counts(); ups != 2 || downs != 2 {
		t.Fatalf("after disconnect: ups=%d downs=%d", ups, downs)
	}
}

func TestEngineFailureYieldsError(t *testing.T) {
	engine := &fakeEngine{upErr: errors.New("permission denied")}
	c := NewWireGuard(engine, fast)
	defer c.Close()

	err := c.Connect(context.Background(), client07)
	if err == nil {
		t.Fatal("Connect succeeded")
	}
	s := c.State()
	if s.Status != StatusError || s.Message != "failed to start tunnel: permission denied" {
		t.Fatalf("state = %v", s)
	}
}

func TestDemoControllerCounters(t *testing.T) {
	c := NewDemo(fast)
	defer c.Close()
	sub := c.Subscribe(256)
	defer sub.Close()

	if err := c.Connect(context.Background(), client07); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	states := until(t, sub, func(s State) bool { return s.RxBytes > 0 })
	last := states[len(states)-1]
	if last.Endpoint != DemoEndpoint {
		t.Fatalf("endpoint = %q", last.Endpoint)
	}
	if last.RxBytes < 2000 || last.RxBytes >= 10000 || last.TxBytes < 1000 || last.TxBytes >= 5000 {
		t.Fatalf("first increment out of range: %v", last)
	}

	_ = c.Disconnect(context.Background())
	until(t, sub, func(s State) bool { return s.Status == StatusDisconnected })
	quiet(t, sub, 30*time.Millisecond)
}

func TestConnectAfterClose(t *testing.T) {
	c := NewDemo(fast)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Connect(context.Background(), client07); !errors.Is(err, ErrClosed) {
		t.Fatalf("Connect = %v, want ErrClosed", err)
	}
}
