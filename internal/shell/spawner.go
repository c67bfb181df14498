// Package shell launches the backend as a child process the way the
// desktop wrapper does: spawn, wait for the port to accept connections,
// relay termination signals, exit with the child's status.
package shell

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"time"
)

const (
	readyAttempts = 30
	readyInterval = 500 * time.Millisecond
)

// Spawner runs one backend child process.
type Spawner struct {
	binary string
	args   []string
	port   int
	logger *slog.Logger

	cmd *exec.Cmd
}

func NewSpawner(binary string, args []string, port int, logger *slog.Logger) *Spawner {
	return &Spawner{binary: binary, args: args, port: port, logger: logger}
}

// Start launches the child with inherited stdio and the server port in its
// environment, then polls until the port accepts connections.
func (s *Spawner) Start(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, s.binary, s.args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), fmt.Sprintf("PORT=%d", s.port))

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start backend: %w", err)
	}
	s.cmd = cmd
	s.logger.Info("backend started", "pid", cmd.Process.Pid, "port", s.port)

	if err := s.waitReady(ctx); err != nil {
		_ = cmd.Process.Kill()
		return err
	}
	s.logger.Info("backend ready", "port", s.port)
	return nil
}

// waitReady polls the server port until it accepts a TCP connection.
func (s *Spawner) waitReady(ctx context.Context) error {
	addr := fmt.Sprintf("localhost:%d", s.port)
	for i := 0; i < readyAttempts; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn, err := net.DialTimeout("tcp", addr, readyInterval)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(readyInterval)
	}
	return fmt.Errorf("backend did not become ready on %s", addr)
}

// Signal forwards a signal to the child.
func (s *Spawner) Signal(sig os.Signal) error {
	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	return s.cmd.Process.Signal(sig)
}

// Wait blocks until the child exits and returns its exit code.
func (s *Spawner) Wait() int {
	if s.cmd == nil {
		return 1
	}
	if err := s.cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		return 1
	}
	return 0
}
