// Package relay is the per-connection orchestrator: it accepts websocket
// chat connections, drives the command executor for each user message, and
// translates executor events into the wire protocol. It also carries the
// bridge's small HTTP surface (health, error callback, fix API).
package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Hamzas-Aigentic/Forgeflow/internal/claude"
	"github.com/Hamzas-Aigentic/Forgeflow/internal/session"
	"github.com/Hamzas-Aigentic/Forgeflow/pkg/protocol"
)

// Executor runs one conversation turn against the assistant subprocess.
// *claude.Runner is the production implementation.
type Executor interface {
	Run(ctx context.Context, history []session.Turn, message string) (ExecutionStream, error)
}

// ExecutionStream is one run's lazy event sequence and final result.
type ExecutionStream interface {
	Events() <-chan claude.Event
	Wait() claude.Result
}

// runnerExecutor adapts *claude.Runner to the Executor interface.
type runnerExecutor struct {
	runner *claude.Runner
}

func (e runnerExecutor) Run(ctx context.Context, history []session.Turn, message string) (ExecutionStream, error) {
	return e.runner.Run(ctx, history, message)
}

// Handler owns the bridge's HTTP and websocket surface.
type Handler struct {
	registry *session.Registry
	executor Executor

	// baseCtx bounds subprocess lifetimes to the process, not to any one
	// request: an in-flight run survives its connection's disconnect.
	baseCtx context.Context
}

// NewHandler creates a Handler backed by the given registry and runner.
func NewHandler(ctx context.Context, registry *session.Registry, runner *claude.Runner) *Handler {
	return &Handler{
		registry: registry,
		executor: runnerExecutor{runner: runner},
		baseCtx:  ctx,
	}
}

// Mount registers all routes on the provided router.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/health", h.health)
	r.Get("/ws", h.handleWebSocket)
	r.Post("/error-callback", h.errorCallback)
	r.Post("/api/fix", h.fix)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, protocol.HealthResponse{
		Status:    "healthy",
		Sessions:  h.registry.Count(),
		Timestamp: time.Now(),
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, protocol.ErrorResponse{Error: message})
}
