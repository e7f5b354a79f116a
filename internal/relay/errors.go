package relay

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Hamzas-Aigentic/Forgeflow/internal/session"
	"github.com/Hamzas-Aigentic/Forgeflow/pkg/protocol"
)

// errorCallback lets the workflow engine report a runtime failure back into
// the conversation that built the workflow. The failure is recorded as a
// synthetic user turn so the assistant sees it on the next exchange, and
// pushed to the client immediately if the connection is still alive.
func (h *Handler) errorCallback(w http.ResponseWriter, r *http.Request) {
	var payload protocol.ErrorCallbackPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.WorkflowID == "" {
		slog.Warn("error callback received without workflowId")
		writeError(w, http.StatusBadRequest, "workflowId is required")
		return
	}

	target := h.registry.FindByWorkflow(payload.WorkflowID)
	if target == nil {
		slog.Warn("no session found for workflow error", "workflow_id", payload.WorkflowID)
		writeError(w, http.StatusNotFound, "No session found for workflowId")
		return
	}

	errorMessage := fmt.Sprintf(
		"[WORKFLOW ERROR] Workflow %s (%s) failed at node %s: %s. Please diagnose and fix this error using the n8n MCP tools.",
		payload.WorkflowName, payload.WorkflowID, payload.FailedNode, payload.ErrorMessage,
	)

	h.registry.AppendTurn(target.ID, session.Turn{
		Role:      session.RoleUser,
		Content:   errorMessage,
		Timestamp: time.Now(),
	})

	if target.Conn != nil {
		if err := target.Conn.Push(protocol.ServerEnvelope{
			Type:    protocol.ServerMessageTypeWorkflowError,
			Content: errorMessage,
		}); err != nil {
			slog.Debug("session connection not writable", "session_id", target.ID, "error", err)
		} else {
			slog.Info("error injected into session",
				"session_id", target.ID, "workflow_id", payload.WorkflowID)
		}
	}

	writeJSON(w, http.StatusOK, struct {
		Success   bool   `json:"success"`
		SessionID string `json:"sessionId"`
	}{Success: true, SessionID: target.ID})
}
