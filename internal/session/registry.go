package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the single owner of all live sessions and the reverse index
// from workflow id to session. Constructed once at startup and shared by
// every connection handler, the sweeper, and the error injector; all
// operations are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	workflows map[string]string // workflow id -> session id
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		workflows: make(map[string]string),
	}
}

// Create allocates a fresh session bound to conn and returns its id.
func (r *Registry) Create(conn Pusher) string {
	id := uuid.NewString()
	now := time.Now()

	r.mu.Lock()
	r.sessions[id] = &Session{
		ID:           id,
		Conn:         conn,
		WorkflowIDs:  make(map[string]struct{}),
		CreatedAt:    now,
		LastActivity: now,
	}
	r.mu.Unlock()

	slog.Info("session created", "session_id", id)
	return id
}

// Get returns the session with the given id, or nil.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// FindByWorkflow resolves a workflow id to the session that registered it,
// or nil.
func (r *Registry) FindByWorkflow(workflowID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionID, ok := r.workflows[workflowID]
	if !ok {
		return nil
	}
	return r.sessions[sessionID]
}

// RegisterWorkflow binds workflowID to the session. No-op if the session is
// gone. Workflow ids are globally unique: if another live session already
// holds the id, the binding moves to the new session (last write wins) with
// a warning, and the old session's set is cleaned up so the reverse index
// never dangles.
func (r *Registry) RegisterWorkflow(sessionID, workflowID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return
	}

	if prevID, ok := r.workflows[workflowID]; ok && prevID != sessionID {
		if prev, ok := r.sessions[prevID]; ok {
			delete(prev.WorkflowIDs, workflowID)
		}
		slog.Warn("workflow rebound to new session",
			"workflow_id", workflowID, "old_session_id", prevID, "session_id", sessionID)
	}

	session.WorkflowIDs[workflowID] = struct{}{}
	r.workflows[workflowID] = sessionID
	slog.Info("workflow registered to session", "session_id", sessionID, "workflow_id", workflowID)
}

// AppendTurn appends a committed turn and bumps last-activity. No-op if the
// session is gone.
func (r *Registry) AppendTurn(sessionID string, turn Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	session.Turns = append(session.Turns, turn)
	session.LastActivity = time.Now()
}

// History returns a copy of the session's turns in conversation order.
// Mutating the returned slice does not affect registry state. A missing
// session yields an empty history.
func (r *Registry) History(sessionID string) []Turn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	turns := make([]Turn, len(session.Turns))
	copy(turns, session.Turns)
	return turns
}

// Destroy removes the session and every reverse-index entry for its
// workflow ids. Atomic with respect to concurrent lookups: no caller can
// observe a removed session via FindByWorkflow, nor a dangling entry.
func (r *Registry) Destroy(sessionID string) {
	r.mu.Lock()
	session, ok := r.sessions[sessionID]
	if ok {
		for workflowID := range session.WorkflowIDs {
			delete(r.workflows, workflowID)
		}
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()

	if ok {
		slog.Info("session destroyed", "session_id", sessionID)
	}
}

// SweepStale destroys every session idle longer than threshold and returns
// how many were destroyed.
func (r *Registry) SweepStale(threshold time.Duration) int {
	cutoff := time.Now().Add(-threshold)

	r.mu.Lock()
	var stale []string
	for id, session := range r.sessions {
		if session.LastActivity.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		session := r.sessions[id]
		for workflowID := range session.WorkflowIDs {
			delete(r.workflows, workflowID)
		}
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if len(stale) > 0 {
		slog.Info("swept stale sessions", "count", len(stale))
	}
	return len(stale)
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
