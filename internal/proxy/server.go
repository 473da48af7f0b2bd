package proxy

import (
	"context"
	"fmt"
	"log"
	"net"

	"github.com/culvert-io/culvert/internal/origin"
)

// Server accepts proxy clients and runs each on its own goroutine. Sessions
// share nothing, so one connection's failure never touches another.
type Server struct {
	ctx     context.Context
	cfg     Config
	verbose bool
}

// NewServer constructs a proxy server. ctx becomes the base context for
// sessions; pass context.Background() to let in-flight sessions drain across
// a shutdown that only closes the listener.
func NewServer(ctx context.Context, cfg Config, verbose bool) *Server {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Connector == nil {
		cfg.Connector = &origin.Connector{KeepAlive: cfg.KeepAlive}
	}
	return &Server{ctx: ctx, cfg: cfg, verbose: verbose}
}

// Serve accepts connections on ln until the listener is closed. Session
// errors are logged under verbose and never end the accept loop.
func (s *Server) Serve(ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		go func() {
			if err := s.handle(c); err != nil {
				if s.verbose {
					log.Printf("proxy: connection error: %v", err)
				}
			}
		}()
	}
}
