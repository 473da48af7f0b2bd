package origin

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestConnect(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		_ = c.Close()
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}

	c := &Connector{Timeout: 2 * time.Second}
	conn, err := c.Connect(context.Background(), host, port)
	if err != nil {
		t.Fatal(err)
	}
	_ = conn.Close()
}

func TestConnectRefused(t *testing.T) {
	t.Parallel()

	// Grab a loopback port and close it again so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	host, port, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	_ = ln.Close()

	c := &Connector{Timeout: 2 * time.Second}
	if _, err := c.Connect(context.Background(), host, port); !errors.Is(err, ErrConnectionRefused) {
		t.Fatalf("err=%v want %v", err, ErrConnectionRefused)
	}
}

func TestConnectDNSFailure(t *testing.T) {
	t.Parallel()

	c := &Connector{Timeout: 2 * time.Second}
	if _, err := c.Connect(context.Background(), "host.invalid", "80"); !errors.Is(err, ErrDNSFailure) {
		t.Fatalf("err=%v want %v", err, ErrDNSFailure)
	}
}
