//go:build unix

package proxy

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// listenBacklog creates the listening socket directly so the accept backlog
// can be set; net.ListenConfig always listens with the kernel default.
// SO_REUSEADDR is set so a restart does not trip over TIME_WAIT sockets.
func listenBacklog(network, addr string, backlog int) (net.Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr(network, addr)
	if err != nil {
		return nil, err
	}

	family := unix.AF_INET
	if tcpAddr.IP != nil && tcpAddr.IP.To4() == nil {
		family = unix.AF_INET6
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	unix.CloseOnExec(fd)

	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("set nonblock: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("setsockopt: %w", err)
	}

	if err := unix.Bind(fd, sockaddr(family, tcpAddr)); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("bind: %w", err)
	}

	if err := unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("listen: %w", err)
	}

	// FileListener dups the descriptor, so the os.File is closed again
	// immediately.
	f := os.NewFile(uintptr(fd), "listen:"+addr)
	defer f.Close()
	return net.FileListener(f)
}

func sockaddr(family int, addr *net.TCPAddr) unix.Sockaddr {
	if family == unix.AF_INET {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		if ip4 := addr.IP.To4(); ip4 != nil {
			copy(sa.Addr[:], ip4)
		}
		return sa
	}

	sa := &unix.SockaddrInet6{Port: addr.Port}
	if ip16 := addr.IP.To16(); ip16 != nil {
		copy(sa.Addr[:], ip16)
	}
	return sa
}
