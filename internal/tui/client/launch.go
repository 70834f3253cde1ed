package client

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// DaemonBinary is the daemon executable looked up next to the running binary,
// then on PATH.
const DaemonBinary = "huddled"

// Probe reports whether a daemon is serving on the socket. It performs a real
// gRPC health check, not just a socket connect.
func Probe(socketPath string) bool {
	c, err := New(socketPath)
	if err != nil {
		return false
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := c.Health.Check(ctx, &healthpb.HealthCheckRequest{})
	return err == nil && resp.Status == healthpb.HealthCheckResponse_SERVING
}

// StartDaemon launches huddled for workspace in the background.
func StartDaemon(workspace string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	bin := filepath.Join(filepath.Dir(executable), DaemonBinary)
	if _, err := os.Stat(bin); err != nil {
		bin = DaemonBinary
	}

	cmd := exec.Command(bin, "--workspace", workspace)
	// Inherit stderr so daemon startup errors are visible.
	cmd.Stderr = os.Stderr
	return cmd.Start()
}

// WaitForDaemon polls Probe until it succeeds or timeout elapses.
func WaitForDaemon(socketPath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if Probe(socketPath) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}

// EnsureDaemon starts the workspace daemon unless one already answers on socketPath.
func EnsureDaemon(workspace, socketPath string) error {
	if Probe(socketPath) {
		return nil
	}
	fmt.Fprintf(os.Stderr, "daemon not running for workspace %q, starting...\n", workspace)
	if err := StartDaemon(workspace); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	if !WaitForDaemon(socketPath, 10*time.Second) {
		return fmt.Errorf("daemon did not become ready")
	}
	return nil
}
