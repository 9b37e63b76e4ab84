// Package notify shows the persistent tunnel status notification.
package notify

import (
	"github.com/user/oneclick-vpn/internal/logger"
)

// Notification is one rendering of the tunnel status.
type Notification struct {
	Title   string
	Text    string
	Ongoing bool // stays on screen while the tunnel is active
}

// Notifier displays notifications. Each Show replaces the previous one.
type Notifier interface {
	Show(n Notification) error
	Close() error
}

// New returns a desktop notifier when enabled and the session bus offers a
// notification service, otherwise a Log notifier.
func New(enabled bool) Notifier {
	if !enabled {
		return &Log{}
	}
	n, err := NewDBus()
	if err != nil {
		logger.Info("Desktop notifications unavailable, logging status instead: %v", err)
		return &Log{}
	}
	return n
}

// Log writes notifications to the application log, skipping repeats.
type Log struct {
	last Notification
}

// Show implements Notifier.
func (l *Log) Show(n Notification) error {
	if n == l.last {
		return nil
	}
	l.last = n
	logger.Info("[notification] %s: %s", n.Title, n.Text)
	return nil
}

// Close implements Notifier.
func (l *Log) Close() error {
	return nil
}
