// Package process wraps subprocess lifecycle for one-shot assistant runs.
package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Config holds what is needed to launch an assistant subprocess.
type Config struct {
	Command     string
	Args        []string
	WorkingDir  string
	Environment map[string]string
}

// Manager owns a running subprocess and its standard streams. A Manager is
// good for exactly one run: stdin is written once and closed, stdout is
// drained to completion, then Wait reaps the process.
type Manager struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser
}

// Start launches the process with stdin/stdout/stderr pipes. The process is
// bound to ctx: cancelling it kills the process.
func Start(ctx context.Context, config Config) (*Manager, error) {
	if config.Command == "" {
		return nil, fmt.Errorf("command cannot be empty")
	}

	cmd := exec.CommandContext(ctx, config.Command, config.Args...)

	if config.WorkingDir != "" {
		cmd.Dir = config.WorkingDir
	}

	cmd.Env = os.Environ()
	for k, v := range config.Environment {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		_ = stderr.Close()
		return nil, fmt.Errorf("failed to start process: %w", err)
	}

	return &Manager{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}, nil
}

// Stdin returns the process's stdin pipe.
func (m *Manager) Stdin() io.WriteCloser {
	return m.stdin
}

// Stdout returns the process's stdout pipe.
func (m *Manager) Stdout() io.ReadCloser {
	return m.stdout
}

// Stderr returns the process's stderr pipe.
func (m *Manager) Stderr() io.ReadCloser {
	return m.stderr
}

// Wait reaps the process after its output streams are drained. The returned
// error carries the exit status for non-zero exits.
func (m *Manager) Wait() error {
	if m.cmd == nil {
		return nil
	}
	return m.cmd.Wait()
}
