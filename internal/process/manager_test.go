package process

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestStart_EmptyCommand(t *testing.T) {
	if _, err := Start(context.Background(), Config{}); err == nil {
		t.Fatal("Start() with empty command should fail")
	}
}

func TestStart_NonexistentCommand(t *testing.T) {
	_, err := Start(context.Background(), Config{Command: "definitely-not-a-real-command-12345"})
	if err == nil {
		t.Fatal("Start() with nonexistent command should fail")
	}
	if !strings.Contains(err.Error(), "failed to start process") {
		t.Errorf("error = %q, want start failure wrapping", err)
	}
}

func TestManager_RoundTrip(t *testing.T) {
	mgr, err := Start(context.Background(), Config{
		Command: "sh",
		Args:    []string{"-c", "tr a-z A-Z; echo oops >&2"},
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := mgr.Stdin().Write([]byte("hello")); err != nil {
		t.Fatalf("stdin write error = %v", err)
	}
	if err := mgr.Stdin().Close(); err != nil {
		t.Fatalf("stdin close error = %v", err)
	}

	out, err := io.ReadAll(mgr.Stdout())
	if err != nil {
		t.Fatalf("stdout read error = %v", err)
	}
	if got := string(out); got != "HELLO" {
		t.Errorf("stdout = %q, want HELLO", got)
	}

	errOut, err := io.ReadAll(mgr.Stderr())
	if err != nil {
		t.Fatalf("stderr read error = %v", err)
	}
	if got := strings.TrimSpace(string(errOut)); got != "oops" {
		t.Errorf("stderr = %q, want oops", got)
	}

	if err := mgr.Wait(); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestManager_NonZeroExit(t *testing.T) {
	mgr, err := Start(context.Background(), Config{
		Command: "sh",
		Args:    []string{"-c", "exit 7"},
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	_ = mgr.Stdin().Close()
	_, _ = io.ReadAll(mgr.Stdout())

	if err := mgr.Wait(); err == nil {
		t.Error("Wait() should surface the non-zero exit")
	}
}

func TestManager_Environment(t *testing.T) {
	mgr, err := Start(context.Background(), Config{
		Command:     "sh",
		Args:        []string{"-c", `printf '%s' "$BRIDGE_TEST_VAR"`},
		Environment: map[string]string{"BRIDGE_TEST_VAR": "42"},
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	_ = mgr.Stdin().Close()

	out, _ := io.ReadAll(mgr.Stdout())
	_ = mgr.Wait()
	if string(out) != "42" {
		t.Errorf("child saw BRIDGE_TEST_VAR = %q, want 42", out)
	}
}

func TestManager_ContextCancelKills(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mgr, err := Start(ctx, Config{
		Command: "sh",
		Args:    []string{"-c", "sleep 30"},
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	_ = mgr.Stdin().Close()

	cancel()

	done := make(chan error, 1)
	go func() { done <- mgr.Wait() }()
	select {
	case err := <-done:
		if err == nil {
			t.Error("Wait() after cancellation should report a kill")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("process not killed on context cancellation")
	}
}
