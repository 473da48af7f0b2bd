// Package proxy implements the culvert forward-proxy server: the accept
// loop, the per-connection session pipeline (parse, rewrite or CONNECT
// handshake, connect, relay), and the bidirectional byte relay that owns
// teardown of both connections.
package proxy
