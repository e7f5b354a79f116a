// Package session owns the live session registry: conversation history,
// workflow ownership, and staleness eviction. All state is in-memory and
// lost on process restart.
package session

import (
	"time"

	"github.com/Hamzas-Aigentic/Forgeflow/pkg/protocol"
)

// Role attributes a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one committed message in a conversation. Immutable once appended.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// Pusher is the narrow view of a client connection the registry's callers
// need: a best-effort outbound send. Implementations report a dead
// connection by returning an error.
type Pusher interface {
	Push(msg protocol.ServerEnvelope) error
}

// Session binds a connection to its conversation history and the workflow
// ids discovered during it. The Registry owns all mutation; Conn is a
// non-owning handle used only to push data out.
type Session struct {
	ID           string
	Conn         Pusher
	Turns        []Turn
	WorkflowIDs  map[string]struct{}
	CreatedAt    time.Time
	LastActivity time.Time
}
