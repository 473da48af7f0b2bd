package proxy

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Relay moves bytes between client and upstream in both directions until
// either peer closes or a socket fails. Data is forwarded verbatim in chunks
// of at most bufSize bytes, with delay slept after each iteration when
// non-zero. Both connections are closed exactly once before Relay returns,
// on every exit path; a peer's clean close ends the whole relay rather than
// leaving the other direction draining.
func Relay(ctx context.Context, client, upstream net.Conn, bufSize int, delay time.Duration) error {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	var closeOnce sync.Once
	closeBoth := func() {
		closeOnce.Do(func() {
			_ = client.Close()
			_ = upstream.Close()
		})
	}
	defer closeBoth()

	// A canceled context closes both sides to unblock the pending reads.
	stop := context.AfterFunc(ctx, closeBoth)
	defer stop()

	var g errgroup.Group
	g.Go(func() error {
		defer closeBoth()
		return relayHalf(upstream, client, bufSize, delay)
	})
	g.Go(func() error {
		defer closeBoth()
		return relayHalf(client, upstream, bufSize, delay)
	})

	return g.Wait()
}

// relayHalf copies src to dst until EOF or a socket error. A nil return
// means the peer closed or the other direction tore the relay down first.
func relayHalf(dst, src net.Conn, bufSize int, delay time.Duration) error {
	buf := make([]byte, bufSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return ignoreClosed(werr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return ignoreClosed(err)
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
}

// ignoreClosed filters the error produced when the opposite direction has
// already closed both connections.
func ignoreClosed(err error) error {
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
