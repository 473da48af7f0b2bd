package origin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"
)

var (
	ErrDNSFailure         = errors.New("dns resolution failed")
	ErrConnectTimeout     = errors.New("connect timeout")
	ErrConnectionRefused  = errors.New("connection refused")
	ErrNetworkUnreachable = errors.New("network unreachable")
)

// DefaultTimeout bounds a single connect attempt when no timeout is set.
const DefaultTimeout = 5 * time.Second

// Connector opens connections to origin servers.
type Connector struct {
	// Timeout bounds DNS resolution plus the TCP connect. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// KeepAlive is applied to established TCP connections.
	KeepAlive net.KeepAliveConfig
}

// Connect resolves host and opens a TCP connection to its first resolved
// address on port. The returned error wraps one of the package sentinel
// errors when the failure is classifiable.
func (c *Connector) Connect(ctx context.Context, host, port string) (net.Conn, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDNSFailure, host, err)
	}

	// Only the first resolved address is attempted; a Dialer given the
	// hostname would fall back through the whole list.
	addr := net.JoinHostPort(addrs[0].IP.String(), port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, classify(addr, err)
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetKeepAliveConfig(c.KeepAlive)
	}

	return conn, nil
}

// classify maps a dial error onto the package sentinel errors.
func classify(addr string, err error) error {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("%w: %s", ErrConnectionRefused, addr)
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		return fmt.Errorf("%w: %s", ErrNetworkUnreachable, addr)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s", ErrConnectTimeout, addr)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s", ErrConnectTimeout, addr)
	}

	return fmt.Errorf("connect %s: %w", addr, err)
}
