// Package core provides the hosting service that owns the tunnel controller.
package core

import (
	"context"
	"errors"
	"sync"

	"github.com/user/oneclick-vpn/internal/logger"
	"github.com/user/oneclick-vpn/internal/notify"
	"github.com/user/oneclick-vpn/internal/observe"
	"github.com/user/oneclick-vpn/internal/store"
	"github.com/user/oneclick-vpn/internal/tunnel"
)

// current is the process-wide tunnel state. The relay goroutine of the
// running Service is its only writer.
var current = observe.NewValue(tunnel.Disconnected())

// CurrentState returns the process-wide tunnel state.
func CurrentState() tunnel.State {
	return current.Get()
}

// SubscribeState follows the process-wide tunnel state.
func SubscribeState(buffer int) *observe.Subscription[tunnel.State] {
	return current.Subscribe(buffer)
}

// StatusListener is a callback invoked when VPN status changes.
type StatusListener func(status *StatusPayload)

// Options wires a Service.
type Options struct {
	Controller tunnel.Controller
	Repository *store.Repository
	Notifier   notify.Notifier              // nil logs notifications
	State      *observe.Value[tunnel.State] // nil uses the process-wide value
}

// Service is the single owner of the tunnel controller. It relays controller
// states into the shared state value, the notification and the listener.
type Service struct {
	mu             sync.RWMutex
	controller     tunnel.Controller
	repo           *store.Repository
	notifier       notify.Notifier
	state          *observe.Value[tunnel.State]
	statusListener StatusListener

	ctx       context.Context
	cancel    context.CancelFunc
	started   bool
	stopped   bool
	states    *observe.Subscription[tunnel.State]
	selection *observe.Subscription[string]
	relayDone chan struct{}
}

// NewService creates a service around an existing controller.
func NewService(opts Options) (*Service, error) {
	if opts.Controller == nil {
		return nil, errors.New("controller is required")
	}
	if opts.Repository == nil {
		return nil, errors.New("repository is required")
	}
	if opts.Notifier == nil {
		opts.Notifier = &notify.Log{}
	}
	if opts.State == nil {
		opts.State = current
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		controller: opts.Controller,
		repo:       opts.Repository,
		notifier:   opts.Notifier,
		state:      opts.State,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// SetStatusListener sets a callback that will be called on every status change.
func (s *Service) SetStatusListener(listener StatusListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusListener = listener
}

// Repository returns the profile repository.
func (s *Service) Repository() *store.Repository {
	return s.repo
}

// State returns the state last relayed by the service.
func (s *Service) State() tunnel.State {
	return s.state.Get()
}

// Start begins relaying controller states.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return tunnel.ErrClosed
	}
	if s.started {
		return nil
	}
	logger.Info("Starting VPN service...")

	s.states = s.controller.Subscribe(32)
	s.selection = s.repo.Subscribe(4)
	s.relayDone = make(chan struct{})
	s.started = true

	go s.relay(s.states, s.selection, s.relayDone)

	logger.Info("VPN service started successfully")
	return nil
}

// Stop disconnects, waits for the relay to deliver the final state and
// releases the controller and notifier.
func (s *Service) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	logger.Info("Stopping VPN service...")
	s.cancel()

	if err := s.controller.Disconnect(context.Background()); err != nil {
		logger.Warning("Disconnect during shutdown failed: %v", err)
	}

	if started {
		s.states.Close()
		s.selection.Close()
		<-s.relayDone
	}

	var errs []error
	if err := s.controller.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.notifier.Close(); err != nil {
		errs = append(errs, err)
	}

	logger.Info("VPN service stopped")
	return errors.Join(errs...)
}

// relay is the single writer of the shared state value.
func (s *Service) relay(states *observe.Subscription[tunnel.State], selection *observe.Subscription[string], done chan struct{}) {
	defer close(done)
	defer logger.Recover("statusRelay")

	stateC, selectionC := states.C(), selection.C()
	for stateC != nil {
		select {
		case st, ok := <-stateC:
			if !ok {
				stateC = nil
				continue
			}
			s.state.Set(st)
			s.broadcastStatus()
		case _, ok := <-selectionC:
			if !ok {
				selectionC = nil
				continue
			}
			// The label shown while idle follows the selection.
			s.broadcastStatus()
		}
	}
}
