//go:build !windows

package ui

import (
	"bytes"
	"image"
	"image/png"

	"github.com/user/oneclick-vpn/internal/logger"
)

// encodeIcon produces PNG, which the tray accepts on Linux and macOS.
func encodeIcon(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logger.Error("Failed to encode tray icon: %v", err)
		return nil
	}
	return buf.Bytes()
}
