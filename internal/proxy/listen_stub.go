//go:build !unix

package proxy

import (
	"context"
	"net"
)

// listenBacklog falls back to net.ListenConfig on platforms without the
// unix socket API; the backlog is left at the kernel default there.
func listenBacklog(network, addr string, _ int) (net.Listener, error) {
	lc := net.ListenConfig{}
	return lc.Listen(context.Background(), network, addr)
}
