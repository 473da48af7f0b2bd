// Package httpreq parses the first block of bytes read from a proxy client
// into a structured request and derives the outbound bytes from it.
//
// It deliberately works on a raw first-read chunk rather than a buffered
// stream: the chunk is not guaranteed to contain a complete HTTP message, and
// the rewrite contract is byte-exact on the original input.
package httpreq
