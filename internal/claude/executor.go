package claude

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Hamzas-Aigentic/Forgeflow/internal/process"
	"github.com/Hamzas-Aigentic/Forgeflow/internal/session"
	"github.com/Hamzas-Aigentic/Forgeflow/internal/workflow"
)

// defaultArgs put the CLI in one-shot programmatic mode reading a plain
// transcript from stdin and streaming JSON records to stdout.
var defaultArgs = []string{"-p", "--verbose", "--output-format", "stream-json", "--dangerously-skip-permissions"}

// Result is the terminal outcome of a completed run.
type Result struct {
	// Response is the concatenation of all text fragments in emission order.
	Response string
	// WorkflowIDs are the distinct workflow ids extracted from Response.
	WorkflowIDs []string
}

// Stream is the lazy, single-consumer event sequence of one run. The caller
// must drain Events before Wait returns a meaningful Result.
type Stream struct {
	events chan Event
	done   chan struct{}
	result Result
}

// Events returns the run's event channel. It is closed when the subprocess
// output is exhausted.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Wait blocks until the subprocess has exited and returns the final result.
func (s *Stream) Wait() Result {
	<-s.done
	return s.result
}

// Runner executes conversation turns against the claude CLI subprocess.
type Runner struct {
	command   string
	args      []string
	extractor *workflow.Extractor
}

// NewRunner creates a Runner spawning the given command with the default
// programmatic-mode arguments.
func NewRunner(command string, extractor *workflow.Extractor) *Runner {
	return &Runner{
		command:   command,
		args:      defaultArgs,
		extractor: extractor,
	}
}

// Run spawns the subprocess, writes the serialized conversation to its
// stdin, and returns a Stream of classified output events produced
// incrementally as the subprocess writes lines. Launch failure is the only
// error: once the process is up, diagnostics and non-zero exits are logged
// and the accumulated result is still returned.
//
// There is no mid-run cancellation; ctx should be the process-lifetime
// context, not a per-request one.
func (r *Runner) Run(ctx context.Context, history []session.Turn, message string) (*Stream, error) {
	transcript := formatTranscript(history, message)

	slog.Debug("executing claude command", "history_length", len(history))

	mgr, err := process.Start(ctx, process.Config{
		Command: r.command,
		Args:    r.args,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start claude process: %w", err)
	}

	stream := &Stream{
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}

	go r.pump(mgr, transcript, stream)

	return stream, nil
}

// pump feeds stdin, relays classified stdout line by line, drains stderr,
// and reaps the process.
func (r *Runner) pump(mgr *process.Manager, transcript string, stream *Stream) {
	defer close(stream.done)
	defer close(stream.events)

	var wg sync.WaitGroup

	// The whole conversation goes in up front; nothing else is ever sent.
	// Written concurrently with the stdout drain so a child that floods
	// stdout before reading stdin cannot wedge both pipes.
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := mgr.Stdin().Write([]byte(transcript)); err != nil {
			slog.Warn("failed to write transcript to claude stdin", "error", err)
		}
		_ = mgr.Stdin().Close()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(mgr.Stderr())
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				slog.Warn("claude stderr", "line", line)
			}
		}
	}()

	classifier := NewClassifier()
	var response strings.Builder

	scanner := bufio.NewScanner(mgr.Stdout())
	// Large buffer: tool results embed whole file contents in one record.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		event, ok := classifier.Classify(scanner.Bytes())
		if !ok {
			continue
		}
		if event.Type == EventTypeText {
			response.WriteString(event.Text)
		}
		stream.events <- event
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("error reading claude stdout", "error", err)
	}

	wg.Wait()
	if err := mgr.Wait(); err != nil {
		slog.Error("claude process exited with error", "error", err)
	}

	full := response.String()
	stream.result = Result{
		Response:    full,
		WorkflowIDs: r.extractor.Extract(full),
	}
}

// formatTranscript serializes prior turns plus the new user message into the
// plain-text conversation format the CLI expects on stdin.
func formatTranscript(history []session.Turn, message string) string {
	parts := make([]string, 0, len(history)+1)
	for _, turn := range history {
		switch turn.Role {
		case session.RoleUser:
			parts = append(parts, "Human: "+turn.Content)
		default:
			parts = append(parts, "Assistant: "+turn.Content)
		}
	}
	parts = append(parts, "Human: "+message)
	return strings.Join(parts, "\n\n")
}
