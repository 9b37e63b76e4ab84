package api

import (
	"net"

	"github.com/user/oneclick-vpn/internal/config"
)

func listen(addr string) (net.Listener, error) {
	if config.IsSocketAddress(addr) {
		return listenSocket(addr)
	}
	return net.Listen("tcp", addr)
}
