// Package ui provides the system tray: a one-tap tile, the status lines and
// the profile picker.
package ui

import (
	"sync"

	"fyne.io/systray"

	"github.com/user/oneclick-vpn/internal/core"
	"github.com/user/oneclick-vpn/internal/logger"
	"github.com/user/oneclick-vpn/internal/profiles"
	"github.com/user/oneclick-vpn/internal/tunnel"
)

// Options configures Run.
type Options struct {
	ConfigPath string
	OnExit     func() // called before the service stops
}

type tray struct {
	svc  *core.Service
	opts Options

	mu       sync.Mutex
	ready    bool
	profile  string
	status   *systray.MenuItem
	detail   *systray.MenuItem
	toggle   *systray.MenuItem
	picker   *systray.MenuItem
	items    map[string]*systray.MenuItem
	settings *systray.MenuItem
	logs     *systray.MenuItem
	quit     *systray.MenuItem
}

// Run shows the tray and blocks until Quit. The service must not be started
// yet; Run starts it once the tray is ready and stops it on exit.
func Run(svc *core.Service, opts Options) {
	t := &tray{svc: svc, opts: opts, items: make(map[string]*systray.MenuItem)}
	svc.SetStatusListener(t.update)
	systray.Run(t.onReady, t.onExit)
}

func (t *tray) onReady() {
	systray.SetIcon(GetIcon(tunnel.StatusDisconnected))
	systray.SetTitle(AppName)
	systray.SetTooltip(AppName)

	// Tapping the icon works like the quick-settings tile.
	systray.SetOnTapped(func() {
		logger.SafeGo("trayTap", t.onToggle)
	})

	t.mu.Lock()
	t.status = systray.AddMenuItem("Disconnected", "")
	t.status.Disable()
	t.detail = systray.AddMenuItem("", "")
	t.detail.Disable()
	t.detail.Hide()

	systray.AddSeparator()

	t.toggle = systray.AddMenuItem("Connect", "Connect or disconnect the selected profile")
	t.picker = systray.AddMenuItem("Profile", "Choose the WireGuard profile")
	for _, id := range profiles.Names() {
		t.items[id] = t.picker.AddSubMenuItemCheckbox(profiles.Label(id), id, false)
	}

	systray.AddSeparator()

	t.settings = systray.AddMenuItem("Open settings", "")
	t.logs = systray.AddMenuItem("Open log", "")

	systray.AddSeparator()

	t.quit = systray.AddMenuItem("Quit", "")
	t.ready = true
	t.mu.Unlock()

	for id, item := range t.items {
		go t.watchProfile(id, item)
	}
	go t.menuLoop()

	if err := t.svc.Start(); err != nil {
		logger.Error("Failed to start VPN service: %v", err)
	}
	t.update(t.svc.GetStatusPayload())
}

func (t *tray) menuLoop() {
	defer logger.Recover("systray-menu-loop")
	for {
		select {
		case <-t.toggle.ClickedCh:
			logger.SafeGo("toggle", t.onToggle)
		case <-t.settings.ClickedCh:
			logger.SafeGo("openSettings", func() { openFile(t.opts.ConfigPath) })
		case <-t.logs.ClickedCh:
			logger.SafeGo("openLog", func() { openFile(logger.GetLogPath()) })
		case <-t.quit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (t *tray) watchProfile(id string, item *systray.MenuItem) {
	defer logger.Recover("profile-picker")
	for range item.ClickedCh {
		if err := t.svc.SelectProfile(id); err != nil {
			logger.Error("Failed to select %s: %v", id, err)
		}
	}
}

func (t *tray) onToggle() {
	logger.Connection("User toggled the tunnel")
	if err := t.svc.Dispatch(core.Request{Command: core.CommandToggle}); err != nil {
		logger.Error("Toggle failed: %v", err)
	}
}

func (t *tray) onExit() {
	logger.Info("OneClick VPN shutting down")
	if t.opts.OnExit != nil {
		t.opts.OnExit()
	}
	if err := t.svc.Stop(); err != nil {
		logger.Warning("Service stop: %v", err)
	}
}

// update is the status listener; it runs on the service relay goroutine.
func (t *tray) update(status *core.StatusPayload) {
	defer logger.Recover("updateUI")
	if status == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ready {
		return
	}

	v := NewTrayView(status)
	systray.SetIcon(GetIcon(tunnel.Status(status.State)))
	systray.SetTooltip(v.Tooltip)
	t.status.SetTitle(v.Status)
	if v.Detail != "" {
		t.detail.SetTitle(v.Detail)
		t.detail.Show()
	} else {
		t.detail.Hide()
	}
	t.toggle.SetTitle(v.ToggleLabel)

	if status.Profile != t.profile {
		if item, ok := t.items[t.profile]; ok {
			item.Uncheck()
		}
		if item, ok := t.items[status.Profile]; ok {
			item.Check()
		}
		t.picker.SetTitle("Profile: " + status.Label)
		t.profile = status.Profile
	}
}

