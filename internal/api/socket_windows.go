//go:build windows

package api

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/Microsoft/go-winio"

	"github.com/user/oneclick-vpn/internal/config"
)

// Authenticated users may read and write; SYSTEM and administrators get full access.
const pipeSecurity = "D:(A;;GRGW;;;AU)(A;;GA;;;SY)(A;;GA;;;BA)"

func listenSocket(addr string) (net.Listener, error) {
	if !strings.HasPrefix(addr, config.PipePrefix) {
		return nil, fmt.Errorf("unsupported socket address %q", addr)
	}
	return winio.ListenPipe(addr, &winio.PipeConfig{SecurityDescriptor: pipeSecurity})
}

func dialSocket(ctx context.Context, addr string) (net.Conn, error) {
	if !strings.HasPrefix(addr, config.PipePrefix) {
		return nil, fmt.Errorf("unsupported socket address %q", addr)
	}
	return winio.DialPipeContext(ctx, addr)
}
