package procutil

import (
	"fmt"
	"os/exec"
	"strings"
)

// Command builds a command that never flashes a console window.
func Command(name string, args ...string) *exec.Cmd {
	return HideWindow(exec.Command(name, args...))
}

// Run executes name with args and folds its combined output into the error.
func Run(name string, args ...string) error {
	out, err := Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Output executes name with args and returns its standard output.
func Output(name string, args ...string) (string, error) {
	out, err := Command(name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return string(out), nil
}
