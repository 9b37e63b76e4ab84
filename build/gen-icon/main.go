//go:build ignore

// gen-icon writes the tray icons for every tunnel status, for packaging and
// store listings.
// Usage: go run build/gen-icon/main.go [output-dir]
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/oneclick-vpn/internal/tunnel"
	"github.com/user/oneclick-vpn/internal/ui"
)

func main() {
	dir := "build/icons"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}

	statuses := []tunnel.Status{
		tunnel.StatusDisconnected,
		tunnel.StatusConnecting,
		tunnel.StatusConnected,
		tunnel.StatusError,
	}
	for _, st := range statuses {
		data := ui.GetIcon(st)
		ext := ".ico"
		if bytes.HasPrefix(data, []byte("\x89PNG")) {
			ext = ".png"
		}
		out := filepath.Join(dir, string(st)+ext)
		if err := os.WriteFile(out, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", out, err)
			os.Exit(1)
		}
		fmt.Println(out)
	}
}
