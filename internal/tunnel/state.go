// Package tunnel models the lifecycle of one VPN tunnel and provides the
// controllers that drive it.
package tunnel

import (
	"fmt"
	"strings"
)

// Status is the lifecycle phase of a tunnel.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// State is one immutable snapshot of a tunnel. Every transition replaces the
// whole value; fields that do not belong to Status are always zero.
type State struct {
	Status   Status
	Endpoint string // connected only
	RxBytes  uint64 // connected only
	TxBytes  uint64 // connected only
	Message  string // error only
}

// Disconnected returns the idle state.
func Disconnected() State {
	return State{Status: StatusDisconnected}
}

// Connecting returns the state published while a connection is set up.
func Connecting() State {
	return State{Status: StatusConnecting}
}

// Connected returns a connected state with traffic counters.
func Connected(endpoint string, rx, tx uint64) State {
	return State{Status: StatusConnected, Endpoint: endpoint, RxBytes: rx, TxBytes: tx}
}

// Failed returns an error state carrying a human-readable message.
func Failed(message string) State {
	if message == "" {
		message = "Invalid WireGuard configuration"
	}
	return State{Status: StatusError, Message: message}
}

// Active reports whether the tunnel is connecting or connected.
func (s State) Active() bool {
	return s.Status == StatusConnecting || s.Status == StatusConnected
}

func (s State) String() string {
	switch s.Status {
	case StatusConnected:
		return fmt.Sprintf("connected(%s, rx=%d, tx=%d)", s.Endpoint, s.RxBytes, s.TxBytes)
	case StatusError:
		return fmt.Sprintf("error(%s)", s.Message)
	case "":
		return string(StatusDisconnected)
	}
	return string(s.Status)
}

// FormatBytes renders a byte count as B, KB or MB with one decimal.
func FormatBytes(n uint64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	kb := float64(n) / 1024
	if kb < 1024 {
		return fmt.Sprintf("%.1f KB", kb)
	}
	return fmt.Sprintf("%.1f MB", kb/1024)
}

// Traffic renders the counters of a connected state as "↓ rx ↑ tx".
func (s State) Traffic() string {
	var b strings.Builder
	b.WriteString("↓ ")
	b.WriteString(FormatBytes(s.RxBytes))
	b.WriteString(" ↑ ")
	b.WriteString(FormatBytes(s.TxBytes))
	return b.String()
}
