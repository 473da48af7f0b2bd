package proxy

import (
	"fmt"
	"io"
	"log"
	"net"

	"github.com/culvert-io/culvert/internal/httpreq"
)

// handle runs one client connection through the full pipeline: read the
// first request chunk, parse it, then either rewrite-and-forward a plain
// request or establish a CONNECT tunnel. Errors are returned to the accept
// loop for optional logging; by the time handle returns, every connection it
// opened is closed.
func (s *Server) handle(conn net.Conn) error {
	defer conn.Close()

	buf := make([]byte, s.cfg.bufferSize())
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		// Client went away before sending anything.
		return nil
	}
	raw := buf[:n]

	req, err := httpreq.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if s.verbose {
		log.Printf("proxy: %s %s %s", req.Method, req.Target, req.Version)
	}

	host, port := req.OriginAddr()

	switch {
	case req.IsForwardable():
		return s.forward(conn, req, raw, host, port)
	case req.IsTunnel():
		return s.tunnel(conn, req, host, port)
	default:
		return fmt.Errorf("unsupported method %q", req.Method)
	}
}

// forward handles the plain-method branch: rewrite the absolute-form request
// to origin-form, send it (body fragment included) to the origin, and relay
// whatever follows.
func (s *Server) forward(client net.Conn, req *httpreq.Request, raw []byte, host, port string) error {
	upstream, err := s.cfg.Connector.Connect(s.ctx, host, port)
	if err != nil {
		return err
	}

	if _, err := upstream.Write(req.Rewrite(raw)); err != nil {
		_ = upstream.Close()
		return fmt.Errorf("forward request: %w", err)
	}

	return Relay(s.ctx, client, upstream, s.cfg.bufferSize(), s.cfg.RelayDelay)
}

// tunnel handles CONNECT: dial the target first, then tell the client the
// tunnel is up, echoing back the version token it sent. Nothing is written
// to the client when the dial fails; it only ever observes a closed
// connection.
func (s *Server) tunnel(client net.Conn, req *httpreq.Request, host, port string) error {
	upstream, err := s.cfg.Connector.Connect(s.ctx, host, port)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(client, req.Version+" 200 Connection Established\r\nConnection: close\r\n\r\n"); err != nil {
		_ = upstream.Close()
		return fmt.Errorf("tunnel reply: %w", err)
	}

	// The client answers the reply with its real protocol data, typically a
	// TLS ClientHello; pass the chunk through unparsed.
	buf := make([]byte, s.cfg.bufferSize())
	n, err := client.Read(buf)
	if err != nil {
		_ = upstream.Close()
		return fmt.Errorf("tunnel read: %w", err)
	}
	if _, err := upstream.Write(buf[:n]); err != nil {
		_ = upstream.Close()
		return fmt.Errorf("tunnel write: %w", err)
	}

	return Relay(s.ctx, client, upstream, s.cfg.bufferSize(), s.cfg.RelayDelay)
}
