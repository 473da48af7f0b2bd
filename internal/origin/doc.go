// Package origin establishes outbound TCP connections to origin servers.
//
// A Connector resolves the origin host, attempts the first resolved address
// only, and classifies failures so the session boundary can log them
// uniformly. There is no retry and no multi-address fallback: one failed
// attempt aborts the owning session.
package origin
