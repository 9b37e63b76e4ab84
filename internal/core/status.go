package core

import (
	"github.com/user/oneclick-vpn/internal/logger"
	"github.com/user/oneclick-vpn/internal/notify"
	"github.com/user/oneclick-vpn/internal/profiles"
	"github.com/user/oneclick-vpn/internal/tunnel"
)

// StatusPayload represents the VPN status for UI and API consumers.
type StatusPayload struct {
	State    string `json:"state"`
	Endpoint string `json:"endpoint,omitempty"`
	RxBytes  uint64 `json:"rx_bytes"`
	TxBytes  uint64 `json:"tx_bytes"`
	Traffic  string `json:"traffic,omitempty"`
	Error    string `json:"error,omitempty"`
	Profile  string `json:"profile"`
	Label    string `json:"label"`
}

// NewStatusPayload renders st for the selected profile.
func NewStatusPayload(st tunnel.State, profile string) *StatusPayload {
	status := &StatusPayload{
		State:   string(st.Status),
		Profile: profile,
		Label:   profiles.Label(profile),
	}
	switch st.Status {
	case tunnel.StatusConnected:
		status.Endpoint = st.Endpoint
		status.RxBytes = st.RxBytes
		status.TxBytes = st.TxBytes
		status.Traffic = st.Traffic()
	case tunnel.StatusError:
		status.Error = st.Message
	}
	return status
}

// GetStatusPayload returns the current status.
func (s *Service) GetStatusPayload() *StatusPayload {
	return NewStatusPayload(s.state.Get(), s.repo.SelectedProfile())
}

// BuildNotification renders the status notification for st. An error is
// titled Disconnected and shows its message.
func BuildNotification(st tunnel.State, profile string) notify.Notification {
	n := notify.Notification{Ongoing: st.Active()}
	switch st.Status {
	case tunnel.StatusConnected:
		n.Title = "Connected"
		n.Text = st.Traffic()
	case tunnel.StatusConnecting:
		n.Title = "Connecting"
		n.Text = profiles.Label(profile)
	case tunnel.StatusError:
		n.Title = "Disconnected"
		n.Text = st.Message
	default:
		n.Title = "Disconnected"
		n.Text = profiles.Label(profile)
	}
	return n
}

// broadcastStatus renders the notification and sends status to the listener.
func (s *Service) broadcastStatus() {
	st := s.state.Get()
	profile := s.repo.SelectedProfile()

	if err := s.notifier.Show(BuildNotification(st, profile)); err != nil {
		logger.Warning("Notification update failed: %v", err)
	}

	s.mu.RLock()
	listener := s.statusListener
	s.mu.RUnlock()
	if listener != nil {
		listener(NewStatusPayload(st, profile))
	}
}
