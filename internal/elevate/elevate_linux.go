//go:build linux

package elevate

import (
	"fmt"
	"os"
	"os/exec"
)

// IsAdmin returns true if the current process is running as root.
func IsAdmin() bool {
	return os.Geteuid() == 0
}

// RunAsAdmin starts the current executable with args as root, trying
// pkexec (graphical prompt) and then sudo. The privileged copy inherits the
// terminal; RunAsAdmin waits for it to finish.
func RunAsAdmin(args []string) error {
	exe, err := executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	argv := append([]string{exe}, args...)

	for _, helper := range []string{"pkexec", "sudo"} {
		path, err := exec.LookPath(helper)
		if err != nil {
			continue
		}
		cmd := exec.Command(path, argv...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s: %w", helper, err)
		}
		return nil
	}
	return fmt.Errorf("neither pkexec nor sudo found; please run as root")
}
