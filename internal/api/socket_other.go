//go:build !windows

package api

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"

	"github.com/user/oneclick-vpn/internal/config"
)

func socketPath(addr string) (string, error) {
	path, ok := strings.CutPrefix(addr, config.UnixPrefix)
	if !ok || path == "" {
		return "", fmt.Errorf("unsupported socket address %q", addr)
	}
	return path, nil
}

func listenSocket(addr string) (net.Listener, error) {
	path, err := socketPath(addr)
	if err != nil {
		return nil, err
	}
	// A previous run may have left its socket behind.
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	// The service usually runs elevated; the CLI does not.
	if err := os.Chmod(path, 0666); err != nil {
		ln.Close()
		return nil, err
	}
	return ln, nil
}

func dialSocket(ctx context.Context, addr string) (net.Conn, error) {
	path, err := socketPath(addr)
	if err != nil {
		return nil, err
	}
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}
