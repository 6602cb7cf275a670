package docker

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/mmr-tortoise/stackup/internal/model"
)

// defaultPingTimeout bounds the daemon reachability check. 5 seconds is
// generous enough for Docker Desktop on macOS, which responds noticeably
// slower than native Linux Docker.
const defaultPingTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client for the launch prerequisite
// check. It handles automatic socket detection across platforms and
// exposes a bounded Ping to verify the daemon is actually responding.
//
// Usage:
//
//	c, err := docker.NewClient()
//	if err != nil { /* handle */ }
//	defer c.Close()
//	if err := c.Ping(ctx); err != nil { /* Docker not running */ }
type Client struct {
	// inner is the underlying Docker SDK client. Wrapped rather than
	// embedded to keep the exposed surface down to what the launch
	// sequence needs.
	inner *client.Client

	// host is the connection string the client was built with, kept for
	// diagnostics output (the doctor command).
	host string
}

// NewClient creates a Docker client with automatic socket detection.
//
// Detection priority:
//  1. DOCKER_HOST environment variable, used as-is when set.
//  2. Platform default socket paths (Linux and macOS Unix sockets,
//     the Docker Desktop named pipe on Windows).
//
// Returns a CLIError with ExitPrerequisiteMissing when no socket is
// found or the SDK client cannot be constructed.
func NewClient() (*Client, error) {
	if dockerHost := os.Getenv("DOCKER_HOST"); dockerHost != "" {
		return newClientWithHost(dockerHost)
	}

	host, err := detectDockerHost()
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitPrerequisiteMissing,
			"Docker socket not found",
			err,
		)
	}
	return newClientWithHost(host)
}

// newClientWithHost builds the SDK client for a concrete connection
// string. API version negotiation is enabled so the binary works across
// daemon versions without pinning an API version.
func newClientWithHost(host string) (*Client, error) {
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitPrerequisiteMissing,
			fmt.Sprintf("failed to create Docker client for host %q", host),
			err,
		)
	}
	return &Client{inner: c, host: host}, nil
}

// detectDockerHost returns the Docker connection string for the current
// platform by probing known socket locations. Existence of the socket
// file is checked, not connectivity — a fast filesystem check is enough
// here, and Ping covers the daemon-actually-responding half.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return firstUnixSocket([]string{
			"/var/run/docker.sock",
		})

	case "darwin":
		// Docker Desktop usually symlinks /var/run/docker.sock, but
		// newer versions may only create the per-user socket.
		candidates := []string{"/var/run/docker.sock"}
		if homeDir, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, homeDir+"/.docker/run/docker.sock")
		}
		return firstUnixSocket(candidates)

	case "windows":
		// os.Stat does not work on Windows named pipes, so probe with a
		// short dial instead.
		pipePath := `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipePath, 1*time.Second)
		if err != nil {
			return "", fmt.Errorf("Docker named pipe not found at %s: %w", pipePath, err)
		}
		conn.Close()
		return "npipe://" + pipePath, nil

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// firstUnixSocket returns the Docker host URI for the first socket path
// that exists on the filesystem. Paths are checked in preference order.
func firstUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v — is Docker running?", paths)
}

// Ping verifies the Docker daemon is reachable and responsive, waiting
// up to defaultPingTimeout. A non-responding daemon (e.g., Docker
// Desktop paused) is reported as ExitPrerequisiteMissing.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(
			model.ExitPrerequisiteMissing,
			"Docker daemon is not responding — is Docker running?",
			err,
		)
	}
	return nil
}

// Host returns the connection string the client was built with.
func (c *Client) Host() string {
	return c.host
}

// Close releases the SDK client's resources. Safe to call more than once.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}
