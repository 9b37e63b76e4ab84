//go:build darwin

package elevate

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// IsAdmin returns true if the current process is running as root.
func IsAdmin() bool {
	return os.Geteuid() == 0
}

// RunAsAdmin starts the current executable with args as root. It shows the
// native authorization dialog via osascript and falls back to sudo.
func RunAsAdmin(args []string) error {
	exe, err := executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	// osascript needs the real path
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	parts := []string{quoted(exe)}
	for _, a := range args {
		parts = append(parts, quoted(a))
	}
	shellCmd := strings.Join(parts, " ")

	if path, err := exec.LookPath("osascript"); err == nil {
		script := fmt.Sprintf(`do shell script "%s" with administrator privileges`, escapeAppleScript(shellCmd))
		cmd := exec.Command(path, "-e", script)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err == nil {
			return nil
		}
	}

	sudo, err := exec.LookPath("sudo")
	if err != nil {
		return fmt.Errorf("osascript and sudo not available; please run as root")
	}
	cmd := exec.Command(sudo, append([]string{exe}, args...)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// quoted wraps a string in single quotes for shell usage.
func quoted(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// escapeAppleScript escapes a string for use inside an AppleScript double-quoted string.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}
