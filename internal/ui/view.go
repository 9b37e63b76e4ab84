package ui

import (
	"fmt"

	"github.com/user/oneclick-vpn/internal/core"
	"github.com/user/oneclick-vpn/internal/tunnel"
)

// AppName is shown as the tray title and tile label.
const AppName = "OneClick VPN"

// TileState mirrors the quick-settings tile states.
type TileState int

const (
	TileInactive TileState = iota
	TileActive
	TileUnavailable
)

func (s TileState) String() string {
	switch s {
	case TileActive:
		return "active"
	case TileUnavailable:
		return "unavailable"
	}
	return "inactive"
}

// Tile is the compact one-tap rendering of the tunnel state.
type Tile struct {
	Label    string
	Subtitle string
	State    TileState
}

// TileView renders st as a tile. A connecting tunnel is unavailable, errors
// render as disconnected.
func TileView(st tunnel.Status) Tile {
	t := Tile{Label: AppName}
	switch st {
	case tunnel.StatusConnected:
		t.State = TileActive
		t.Subtitle = "Connected"
	case tunnel.StatusConnecting:
		t.State = TileUnavailable
		t.Subtitle = "Connecting"
	default:
		t.State = TileInactive
		t.Subtitle = "Disconnected"
	}
	return t
}

// TrayView is everything the tray shows for one status.
type TrayView struct {
	Tile        Tile
	Status      string // status menu line
	Detail      string // endpoint and traffic, or the error
	Tooltip     string
	ToggleLabel string
}

// NewTrayView renders status for the tray menu.
func NewTrayView(status *core.StatusPayload) TrayView {
	st := tunnel.Status(status.State)
	v := TrayView{Tile: TileView(st)}

	switch st {
	case tunnel.StatusConnected:
		v.Status = fmt.Sprintf("Connected: %s", status.Label)
		v.Detail = fmt.Sprintf("%s  %s", status.Endpoint, status.Traffic)
		v.Tooltip = fmt.Sprintf("%s: connected\n%s\n%s", AppName, status.Endpoint, status.Traffic)
		v.ToggleLabel = "Disconnect"
	case tunnel.StatusConnecting:
		v.Status = fmt.Sprintf("Connecting: %s", status.Label)
		v.Tooltip = fmt.Sprintf("%s: connecting to %s", AppName, status.Label)
		v.ToggleLabel = "Cancel"
	case tunnel.StatusError:
		v.Status = "Disconnected"
		v.Detail = status.Error
		v.Tooltip = fmt.Sprintf("%s: %s", AppName, status.Error)
		v.ToggleLabel = "Connect"
	default:
		v.Status = "Disconnected"
		v.Tooltip = fmt.Sprintf("%s: disconnected (%s)", AppName, status.Label)
		v.ToggleLabel = "Connect"
	}
	return v
}
