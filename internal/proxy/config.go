package proxy

import (
	"net"
	"time"

	"github.com/culvert-io/culvert/internal/origin"
)

const (
	// DefaultBufferSize is the per-read buffer size for the initial client
	// read and each relay iteration.
	DefaultBufferSize = 8 << 10

	// DefaultRelayDelay is the pause after each relay iteration, trading a
	// little latency for less busy-spinning on chatty connections.
	DefaultRelayDelay = time.Millisecond
)

type Config struct {
	// Connector opens outbound connections to origin servers.
	Connector *origin.Connector

	// BufferSize caps how many bytes a single read moves. Zero means
	// DefaultBufferSize.
	BufferSize int

	// RelayDelay is slept after each relay iteration. Zero disables the
	// pause.
	RelayDelay time.Duration

	KeepAlive net.KeepAliveConfig
}

func (c Config) bufferSize() int {
	if c.BufferSize > 0 {
		return c.BufferSize
	}
	return DefaultBufferSize
}
