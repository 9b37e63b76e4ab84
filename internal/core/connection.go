package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/oneclick-vpn/internal/logger"
	"github.com/user/oneclick-vpn/internal/profiles"
)

// Command is a service command, the equivalent of a start intent.
type Command string

const (
	CommandConnect    Command = "connect"
	CommandDisconnect Command = "disconnect"
	CommandToggle     Command = "toggle"
)

// ErrUnknownCommand is returned by Execute for unsupported commands.
var ErrUnknownCommand = errors.New("unknown command")

// Request is a command with its optional profile. An empty profile means
// the current selection.
type Request struct {
	Command Command `json:"command"`
	Profile string  `json:"profile,omitempty"`
}

// Connect selects profile (empty keeps the current selection), reads its
// bundled configuration and connects the controller.
func (s *Service) Connect(ctx context.Context, profile string) error {
	if profile == "" {
		profile = s.repo.SelectedProfile()
	} else if err := s.repo.SetSelectedProfile(profile); err != nil {
		logger.Error("Cannot select profile %q: %v", profile, err)
		return err
	}
	profile = s.repo.SelectedProfile()

	text, err := s.repo.ReadProfile(profile)
	if err != nil {
		logger.Error("Failed to read profile: %v", err)
		return err
	}

	logger.Connection("Connecting with %s", profiles.Label(profile))
	if err := s.controller.Connect(ctx, text); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Connection attempt with %s cancelled", profiles.Label(profile))
			return err
		}
		return fmt.Errorf("connect %s: %w", profiles.Label(profile), err)
	}
	return nil
}

// Disconnect tears the tunnel down. It is a no-op when already disconnected.
func (s *Service) Disconnect(ctx context.Context) error {
	logger.Connection("Disconnecting")
	return s.controller.Disconnect(ctx)
}

// Toggle disconnects an active (connecting or connected) tunnel and connects
// otherwise.
func (s *Service) Toggle(ctx context.Context, profile string) error {
	if s.controller.State().Active() {
		return s.Disconnect(ctx)
	}
	return s.Connect(ctx, profile)
}

// Execute runs req synchronously.
func (s *Service) Execute(ctx context.Context, req Request) error {
	switch req.Command {
	case CommandConnect:
		return s.Connect(ctx, req.Profile)
	case CommandDisconnect:
		return s.Disconnect(ctx)
	case CommandToggle:
		return s.Toggle(ctx, req.Profile)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, req.Command)
	}
}

// Dispatch runs req in the background, bound to the service lifetime.
// Results are observed through the state; failures are logged.
func (s *Service) Dispatch(req Request) error {
	switch req.Command {
	case CommandConnect, CommandDisconnect, CommandToggle:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, req.Command)
	}
	if req.Profile != "" && !profiles.Exists(req.Profile) {
		return fmt.Errorf("%w: %q", profiles.ErrUnknownProfile, req.Profile)
	}

	logger.SafeGo("command:"+string(req.Command), func() {
		if err := s.Execute(s.ctx, req); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Command %s failed: %v", req.Command, err)
		}
	})
	return nil
}

// SelectedProfile returns the persisted selection.
func (s *Service) SelectedProfile() string {
	return s.repo.SelectedProfile()
}

// SelectProfile persists id as the selection without connecting.
func (s *Service) SelectProfile(id string) error {
	if err := s.repo.SetSelectedProfile(id); err != nil {
		return err
	}
	logger.Info("Selected profile %s", profiles.Label(s.repo.SelectedProfile()))
	return nil
}
