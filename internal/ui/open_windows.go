//go:build windows

package ui

import (
	"os/exec"

	"github.com/user/oneclick-vpn/internal/logger"
	"github.com/user/oneclick-vpn/internal/procutil"
)

// openFile opens path with the associated application.
func openFile(path string) {
	if path == "" {
		return
	}
	cmd := procutil.HideWindow(exec.Command("cmd", "/c", "start", "", path))
	if err := cmd.Start(); err != nil {
		logger.Error("Failed to open %s: %v", path, err)
	}
}
