//go:build linux

package ui

import (
	"os"
	"os/exec"

	"github.com/user/oneclick-vpn/internal/logger"
)

// openFile opens path in $EDITOR or the desktop default application.
func openFile(path string) {
	if path == "" {
		return
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		if err := exec.Command(editor, path).Start(); err == nil {
			return
		}
	}
	if err := exec.Command("xdg-open", path).Start(); err != nil {
		logger.Error("Failed to open %s: %v", path, err)
	}
}
