package httpreq

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedRequestLine = errors.New("malformed request line")
	ErrMalformedHeader      = errors.New("malformed header")
	ErrMissingHost          = errors.New("missing Host header")
)

const (
	crlf        = "\r\n"
	headerEnd   = "\r\n\r\n"
	headerSep   = ": "
	defaultPort = "80"
)

// Request is the structured form of a client's first request chunk.
//
// It is constructed once per connection and not modified afterwards. Body
// holds whatever followed the header terminator in the initial read; it is
// not necessarily the complete message body.
type Request struct {
	Method  string
	Target  string
	Version string
	Headers map[string]string
	Host    string
	Body    []byte
}

// Parse parses raw, the first chunk read from a client connection.
//
// The request line must have exactly three fields. Each header line must
// contain a ": " separator; duplicate header names keep the last value. A
// missing Host header is an error because the proxy has no other way to learn
// the origin.
func Parse(raw []byte) (*Request, error) {
	line, rest, found := bytes.Cut(raw, []byte(crlf))
	if !found {
		return nil, fmt.Errorf("%w: no line terminator", ErrMalformedRequestLine)
	}

	fields := strings.Fields(string(line))
	if len(fields) != 3 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRequestLine, string(line))
	}

	r := &Request{
		Method:  fields[0],
		Target:  fields[1],
		Version: fields[2],
		Headers: make(map[string]string),
	}

	// The first read may be truncated mid-headers; treat a missing blank
	// line as "all headers, no body".
	block, body, found := bytes.Cut(rest, []byte(headerEnd))
	if found {
		r.Body = body
	}

	for _, h := range bytes.Split(block, []byte(crlf)) {
		if len(h) == 0 {
			continue
		}
		name, value, found := bytes.Cut(h, []byte(headerSep))
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, string(h))
		}
		r.Headers[string(name)] = string(value)
	}

	host, ok := r.Headers["Host"]
	if !ok || host == "" {
		return nil, ErrMissingHost
	}
	r.Host = host

	return r, nil
}

// OriginAddr returns the origin host and port taken from the Host header,
// split on the last ':' when one is present.
//
// Without an explicit port the default is 80 for every method, including
// CONNECT. Real CONNECT targets virtually always carry an explicit :443, so
// the fallback is a latent quirk kept for compatibility rather than fixed.
func (r *Request) OriginAddr() (host, port string) {
	if i := strings.LastIndex(r.Host, ":"); i >= 0 {
		return r.Host[:i], r.Host[i+1:]
	}
	return r.Host, defaultPort
}

// IsTunnel reports whether the request asks for a CONNECT tunnel.
func (r *Request) IsTunnel() bool {
	return r.Method == "CONNECT"
}

// forwardable lists the plain methods the proxy forwards after rewriting.
var forwardable = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
	"HEAD":   true,
}

// IsForwardable reports whether the request uses a plain method eligible for
// the rewrite-and-forward path.
func (r *Request) IsForwardable() bool {
	return forwardable[r.Method]
}

// Rewrite converts the raw absolute-form request bytes into origin-form by
// removing every occurrence of "<scheme>//<Host-value>", so the origin server
// sees "GET /path HTTP/1.1" rather than the proxy-style request line. All
// other bytes, including any body fragment, pass through untouched.
func (r *Request) Rewrite(raw []byte) []byte {
	scheme, _, found := strings.Cut(r.Target, "//")
	if !found {
		return raw
	}
	return bytes.ReplaceAll(raw, []byte(scheme+"//"+r.Host), nil)
}
