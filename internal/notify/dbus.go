package notify

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = "/org/freedesktop/Notifications"
	appName    = "OneClick VPN"
	appIcon    = "network-vpn"
)

// DBus sends freedesktop notifications over the session bus and keeps a
// single notification on screen by replacing its id.
type DBus struct {
	mu   sync.Mutex
	conn io.Closer
	obj  dbus.BusObject
	id   uint32
}

// NewDBus connects to the session bus and checks that a notification
// server is running.
func NewDBus() (*DBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	var hasOwner bool
	if err := conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, busName).Store(&hasOwner); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to query %s: %w", busName, err)
	}
	if !hasOwner {
		conn.Close()
		return nil, errors.New("no notification server on the session bus")
	}

	return &DBus{
		conn: conn,
		obj:  conn.Object(busName, dbus.ObjectPath(objectPath)),
	}, nil
}

// Show implements Notifier.
func (d *DBus) Show(n Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	expire := int32(-1)
	if n.Ongoing {
		expire = 0
	}

	var id uint32
	call := d.obj.Call(busName+".Notify", 0,
		appName, d.id, appIcon, n.Title, n.Text,
		[]string{}, hints(n), expire)
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("failed to show notification: %w", err)
	}
	d.id = id
	return nil
}

// Close removes the notification and closes the bus connection.
func (d *DBus) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	if d.id != 0 {
		if call := d.obj.Call(busName+".CloseNotification", 0, d.id); call.Err != nil {
			err = fmt.Errorf("failed to close notification %d: %w", d.id, call.Err)
		}
		d.id = 0
	}
	return errors.Join(err, d.conn.Close())
}

func hints(n Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"category": dbus.MakeVariant("network"),
		"urgency":  dbus.MakeVariant(byte(0)),
	}
	if n.Ongoing {
		h["resident"] = dbus.MakeVariant(true)
		h["transient"] = dbus.MakeVariant(false)
	} else {
		h["transient"] = dbus.MakeVariant(true)
	}
	return h
}
