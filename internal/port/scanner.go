package port

import (
	"context"
	"fmt"
	"net"
)

// Scanner checks whether specific TCP ports are available on the host.
//
// It uses the operating system's network stack (net.Listen) to determine
// if a port is free. This is the most reliable method because it asks the
// OS directly, rather than parsing /proc/net/* or relying on external
// commands like `lsof` or `ss` which may require elevated permissions.
//
// The Scanner is bound to a host address at construction time so that the
// availability check covers the same address space the stack will later
// publish on.
type Scanner struct {
	// host is the bind address to probe. Wildcard addresses ("",
	// "0.0.0.0", "::", "::0") probe all interfaces, which is what Docker
	// publishes on by default — a conflict on any interface must be
	// detected, not just on loopback.
	host string
}

// NewScanner creates a Scanner probing availability on the given host.
// An empty host is treated as the wildcard address.
func NewScanner(host string) *Scanner {
	return &Scanner{host: host}
}

// IsPortAvailable checks whether a single TCP port is free on the
// scanner's host. It attempts net.Listen on the address; if the bind
// succeeds the port is available and the listener is closed immediately.
//
// Returns false for ports already in use, out-of-range port numbers,
// and unresolvable hosts.
func (s *Scanner) IsPortAvailable(port int) bool {
	listener, err := net.Listen("tcp", s.addr(port))
	if err != nil {
		return false
	}
	// The listener existed only to test availability; close it right away
	// so the port is actually free for the stack to claim.
	defer func() { _ = listener.Close() }()
	return true
}

// FindAvailablePort scans [startPort, endPort] (inclusive) and returns
// the first available port. The search is sequential from startPort
// upward, so with a stable host state the same port is selected on every
// run — this determinism is what makes negotiation reproducible.
//
// The context is checked between probes so a caller-imposed deadline can
// cut a pathological scan short.
func (s *Scanner) FindAvailablePort(ctx context.Context, startPort, endPort int) (int, error) {
	for port := startPort; port <= endPort; port++ {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("port scan cancelled at %d: %w", port, err)
		}
		if s.IsPortAvailable(port) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port found in range %d-%d", startPort, endPort)
}

// addr builds the listen address for a probe. Wildcard hosts map to
// ":port" so the bind covers every interface.
func (s *Scanner) addr(port int) string {
	switch s.host {
	case "", "0.0.0.0", "::", "::0":
		return fmt.Sprintf(":%d", port)
	default:
		return net.JoinHostPort(s.host, fmt.Sprintf("%d", port))
	}
}
