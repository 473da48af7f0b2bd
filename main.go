package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/culvert-io/culvert/internal/origin"
	"github.com/culvert-io/culvert/internal/proxy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		listen       = pflag.String("listen", "0.0.0.0:8080", "Proxy listen address")
		backlog      = pflag.Int("listen-backlog", 10, "Accept backlog for the listening socket")
		recvBufferKB = pflag.Int("recv-buffer", 8, "Per-read buffer size in KB")
		relayDelay   = pflag.Duration("relay-delay", proxy.DefaultRelayDelay, "Pause after each relay iteration")
		dialTimeout  = pflag.Duration("dial-timeout", origin.DefaultTimeout, "Timeout for outbound DNS lookup and TCP connect")
		tcpKeepAlive = pflag.String("tcp-keepalive", "45:45:3", "TCP keepalive: on|off|keepidle:keepintvl:keepcnt")
		verbose      = pflag.Bool("verbose", false, "Enable per-connection logging")
	)

	pflag.CommandLine.SortFlags = false
	pflag.Parse()

	ka, err := parseTCPKeepAlive(*tcpKeepAlive)
	if err != nil {
		return fmt.Errorf("invalid --tcp-keepalive: %w", err)
	}

	if *recvBufferKB <= 0 {
		return errors.New("invalid --recv-buffer: must be > 0")
	}

	cfg := proxy.Config{
		Connector:  &origin.Connector{Timeout: *dialTimeout, KeepAlive: ka},
		BufferSize: *recvBufferKB * 1024,
		RelayDelay: *relayDelay,
		KeepAlive:  ka,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := proxy.ListenTCP("tcp", *listen, *backlog, ka)
	if err != nil {
		return err
	}

	// Sessions get a background context so an interrupt only stops the
	// accept loop; in-flight relays drain to their natural end.
	srv := proxy.NewServer(context.Background(), cfg, *verbose)

	context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})

	var g errgroup.Group
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil {
			return fmt.Errorf("proxy serve: %w", err)
		}
		return nil
	})

	log.Printf("proxy listening on %s (backlog %d, buffer %dKB, delay %s)",
		*listen, *backlog, *recvBufferKB, *relayDelay)

	err = g.Wait()
	if ctx.Err() != nil {
		log.Print("shutting down")
		return nil
	}
	return err
}

func parseTCPKeepAlive(s string) (net.KeepAliveConfig, error) {
	switch s = strings.TrimSpace(strings.ToLower(s)); s {
	case "":
		return net.KeepAliveConfig{}, errors.New("empty")
	case "on":
		return net.KeepAliveConfig{Enable: true}, nil
	case "off":
		return net.KeepAliveConfig{Enable: false}, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return net.KeepAliveConfig{}, errors.New("expected on|off|keepidle:keepintvl:keepcnt")
	}

	vals := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return net.KeepAliveConfig{}, err
		}
		if n <= 0 {
			return net.KeepAliveConfig{}, errors.New("values must be > 0")
		}
		vals[i] = n
	}

	return net.KeepAliveConfig{
		Enable:   true,
		Idle:     time.Duration(vals[0]) * time.Second,
		Interval: time.Duration(vals[1]) * time.Second,
		Count:    vals[2],
	}, nil
}
