package relay

import (
	"context"
	"sync"

	"github.com/Hamzas-Aigentic/Forgeflow/internal/claude"
	"github.com/Hamzas-Aigentic/Forgeflow/internal/session"
)

// fakeStream replays canned events and a canned result.
type fakeStream struct {
	events []claude.Event
	result claude.Result
}

func (s *fakeStream) Events() <-chan claude.Event {
	ch := make(chan claude.Event, len(s.events))
	for _, event := range s.events {
		ch <- event
	}
	close(ch)
	return ch
}

func (s *fakeStream) Wait() claude.Result {
	return s.result
}

type executorCall struct {
	history []session.Turn
	message string
}

// fakeExecutor records every Run call and replays a fixed stream.
type fakeExecutor struct {
	mu     sync.Mutex
	calls  []executorCall
	stream *fakeStream
	err    error
}

func (f *fakeExecutor) Run(ctx context.Context, history []session.Turn, message string) (ExecutionStream, error) {
	f.mu.Lock()
	f.calls = append(f.calls, executorCall{history: history, message: message})
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

func (f *fakeExecutor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeExecutor) call(i int) executorCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func newTestHandler(executor Executor) (*Handler, *session.Registry) {
	registry := session.NewRegistry()
	return &Handler{
		registry: registry,
		executor: executor,
		baseCtx:  context.Background(),
	}, registry
}
