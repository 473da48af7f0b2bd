package testutil

import (
	"context"
	"net"
	"testing"
)

// StartCaptureServer starts a loopback TCP server that accepts one
// connection, records the first chunk it receives on the returned channel,
// writes response, and closes. Used to assert the exact bytes a proxy
// forwards to an origin.
func StartCaptureServer(t *testing.T, ctx context.Context, response []byte) (net.Listener, <-chan []byte) {
	t.Helper()

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	received := make(chan []byte, 1)

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()

		buf := make([]byte, 4096)
		n, err := c.Read(buf)
		if err != nil {
			return
		}
		received <- buf[:n]

		if len(response) > 0 {
			_, _ = c.Write(response)
		}
	}()

	return ln, received
}
