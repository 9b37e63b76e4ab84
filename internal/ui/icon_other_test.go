//go:build !windows

package ui

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/user/oneclick-vpn/internal/tunnel"
)

func TestIconIsPNG(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(GetIcon(tunnel.StatusConnected)))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
		t.Fatalf("bounds = %v", b)
	}
}
