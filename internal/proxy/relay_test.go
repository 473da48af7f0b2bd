package proxy

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/culvert-io/culvert/internal/testutil"
)

// tcpPair returns the two ends of a loopback TCP connection.
func tcpPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	ch := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		ch <- c
	}()

	a, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	b := <-ch

	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return a, b
}

func TestRelayBidirectional(t *testing.T) {
	t.Parallel()

	client, clientSide := tcpPair(t)
	upstream, upstreamSide := tcpPair(t)

	done := make(chan error, 1)
	go func() {
		done <- Relay(context.Background(), clientSide, upstreamSide, 1024, 0)
	}()

	// Interleave traffic in both directions; every chunk must arrive
	// verbatim on the other side.
	for range 3 {
		testutil.AssertEcho(t, client, upstream, []byte("ping from client"))
		testutil.AssertEcho(t, upstream, client, []byte("pong from origin"))
	}

	_ = client.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("relay: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not terminate after peer close")
	}

	// Closure propagated: the origin-side peer observes EOF.
	_ = upstream.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := upstream.Read(make([]byte, 1)); err != io.EOF {
		t.Fatalf("expected EOF on origin peer, got %v", err)
	}
}

func TestRelayClosesBothOnUpstreamClose(t *testing.T) {
	t.Parallel()

	client, clientSide := tcpPair(t)
	upstream, upstreamSide := tcpPair(t)

	done := make(chan error, 1)
	go func() {
		done <- Relay(context.Background(), clientSide, upstreamSide, 1024, time.Millisecond)
	}()

	testutil.AssertEcho(t, upstream, client, []byte("origin speaks first"))

	_ = upstream.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("relay: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not terminate after origin close")
	}

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := client.Read(make([]byte, 1)); err != io.EOF {
		t.Fatalf("expected EOF on client peer, got %v", err)
	}
}

func TestRelayContextCancel(t *testing.T) {
	t.Parallel()

	_, clientSide := tcpPair(t)
	_, upstreamSide := tcpPair(t)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Relay(ctx, clientSide, upstreamSide, 1024, 0)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("relay: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not terminate after context cancel")
	}
}
