// Package elevate checks for and acquires administrator rights, which the
// kernel WireGuard engine needs to create its TUN interface.
package elevate

import "os"

// Ensure re-launches the process elevated with args when need is set and the
// process is not already privileged. It reports whether a privileged copy
// was started; the caller should then exit.
func Ensure(need bool, args []string) (bool, error) {
	if !need || IsAdmin() {
		return false, nil
	}
	if err := RunAsAdmin(args); err != nil {
		return false, err
	}
	return true, nil
}

func executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return exe, nil
}
