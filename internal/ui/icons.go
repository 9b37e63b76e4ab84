package ui

import (
	"image"
	"image/color"
	"sync"

	"github.com/user/oneclick-vpn/internal/tunnel"
)

const iconSize = 32

var (
	iconMu    sync.Mutex
	iconCache = map[tunnel.Status][]byte{}
)

// GetIcon returns the encoded tray icon for the given state.
func GetIcon(st tunnel.Status) []byte {
	iconMu.Lock()
	defer iconMu.Unlock()
	if data, ok := iconCache[st]; ok {
		return data
	}
	data := encodeIcon(ShieldIcon(iconColor(st)))
	iconCache[st] = data
	return data
}

func iconColor(st tunnel.Status) color.NRGBA {
	switch st {
	case tunnel.StatusConnected:
		return color.NRGBA{30, 200, 90, 255} // Green
	case tunnel.StatusConnecting:
		return color.NRGBA{240, 190, 30, 255} // Amber
	case tunnel.StatusError:
		return color.NRGBA{220, 55, 55, 255} // Red
	default:
		return color.NRGBA{160, 160, 160, 255} // Gray
	}
}

// ShieldIcon renders a shield with a keyhole at 32x32 on a transparent
// background.
func ShieldIcon(c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))

	// Dark variant for the keyhole and border.
	dark := color.NRGBA{40, 40, 40, 255}
	if lum := int(c.R)*299 + int(c.G)*587 + int(c.B)*114; lum <= 128000 {
		dark = color.NRGBA{c.R / 3, c.G / 3, c.B / 3, 255}
	}

	const cx = 15.5
	for y := 2; y <= 29; y++ {
		halfW := shieldHalfWidth(float64(y))
		for x := 0; x < iconSize; x++ {
			d := abs(float64(x) + 0.5 - cx)
			switch {
			case d > halfW:
				continue
			case d > halfW-1.2 || y == 2:
				img.SetNRGBA(x, y, dark)
			default:
				img.SetNRGBA(x, y, c)
			}
		}
	}

	// Keyhole: a round head and a tapering slot.
	for y := 9; y <= 22; y++ {
		for x := 0; x < iconSize; x++ {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			dx, dy := fx-cx, fy-13.0
			head := dx*dx+dy*dy <= 3.2*3.2
			slot := fy >= 14 && fy <= 22 && abs(dx) <= 1.0+(fy-14)*0.18
			if head || slot {
				img.SetNRGBA(x, y, dark)
			}
		}
	}
	return img
}

// shieldHalfWidth is flat across the top and narrows to a point at the bottom.
func shieldHalfWidth(y float64) float64 {
	switch {
	case y <= 4:
		return 10 + (y-2)*1.5
	case y <= 15:
		return 13
	default:
		w := 13 - (y-15)*(y-15)*0.066
		if w < 0.5 {
			w = 0.5
		}
		return w
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
