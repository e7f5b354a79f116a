package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Hamzas-Aigentic/Forgeflow/internal/claude"
	"github.com/Hamzas-Aigentic/Forgeflow/internal/session"
	"github.com/Hamzas-Aigentic/Forgeflow/pkg/protocol"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket runs one chat connection: create a session, announce it,
// then serve inbound messages until the client goes away.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade websocket", "error", err)
		return
	}

	conn := NewConn(ws)
	sessionID := h.registry.Create(conn)
	defer func() {
		h.registry.Destroy(sessionID)
		conn.Close()
	}()

	if err := conn.Push(protocol.ServerEnvelope{
		Type:      protocol.ServerMessageTypeSession,
		SessionID: sessionID,
	}); err != nil {
		return
	}

	// Serializes requests on this connection: a second message received
	// while one is processing waits its turn instead of interleaving.
	var processing sync.Mutex

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("websocket read ended", "session_id", sessionID, "error", err)
			}
			slog.Info("websocket closed", "session_id", sessionID)
			return
		}

		var msg protocol.ClientEnvelope
		if err := json.Unmarshal(raw, &msg); err != nil {
			slog.Warn("invalid client message", "session_id", sessionID, "error", err)
			continue
		}

		switch msg.Type {
		case protocol.ClientMessageTypePing:
			// Answered immediately, even mid-processing.
			if err := conn.Push(protocol.ServerEnvelope{Type: protocol.ServerMessageTypePong}); err != nil {
				return
			}

		case protocol.ClientMessageTypeMessage:
			if msg.Content == "" {
				continue
			}
			content := msg.Content
			go func() {
				processing.Lock()
				defer processing.Unlock()
				h.processMessage(conn, sessionID, content)
			}()

		default:
			// Unknown client types are noise, not errors.
		}
	}
}

// processMessage answers one user message: history fetch, executor run,
// event relay, persistence, completion. Any failure sends an error envelope
// and leaves the connection ready for the next message.
func (h *Handler) processMessage(conn *Conn, sessionID, content string) {
	history := h.registry.History(sessionID)
	h.registry.AppendTurn(sessionID, session.Turn{
		Role:      session.RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	})

	slog.Info("processing message", "session_id", sessionID, "message_length", len(content))

	stream, err := h.executor.Run(h.baseCtx, history, content)
	if err != nil {
		slog.Error("failed to execute claude command", "session_id", sessionID, "error", err)
		h.push(conn, sessionID, protocol.ServerEnvelope{
			Type:  protocol.ServerMessageTypeError,
			Error: err.Error(),
		})
		return
	}

	// The tool whose result we are waiting on, remembered across events so
	// the result can be enriched with its name. Request-scoped, distinct
	// from the classifier's internal slot.
	var openTool *claude.Event

	for event := range stream.Events() {
		switch event.Type {
		case claude.EventTypeText:
			h.push(conn, sessionID, protocol.ServerEnvelope{
				Type:    protocol.ServerMessageTypeChunk,
				Content: event.Text,
			})

		case claude.EventTypeToolStart:
			open := event
			openTool = &open
			h.push(conn, sessionID, protocol.ServerEnvelope{
				Type: protocol.ServerMessageTypeActivity,
				Activity: &protocol.ActivityEvent{
					ID:        uuid.NewString(),
					Type:      protocol.ActivityTypeToolStart,
					Timestamp: time.Now(),
					ToolName:  event.ToolName,
					ToolID:    event.ToolID,
				},
			})

		case claude.EventTypeToolResult:
			activity := &protocol.ActivityEvent{
				ID:        uuid.NewString(),
				Type:      protocol.ActivityTypeToolResult,
				Timestamp: time.Now(),
				ToolID:    event.ToolID,
				Result: &protocol.ToolResult{
					Success: event.Success,
					Error:   event.Error,
				},
			}
			if openTool != nil {
				activity.ToolName = openTool.ToolName
			}
			h.push(conn, sessionID, protocol.ServerEnvelope{
				Type:     protocol.ServerMessageTypeActivity,
				Activity: activity,
			})

			if openTool != nil {
				if notification := notificationFor(openTool.ToolName, event.Success, event.Error); notification != nil {
					h.push(conn, sessionID, protocol.ServerEnvelope{
						Type:         protocol.ServerMessageTypeNotification,
						Notification: notification,
					})
				}
			}
			openTool = nil
		}
	}

	result := stream.Wait()

	for _, workflowID := range result.WorkflowIDs {
		h.registry.RegisterWorkflow(sessionID, workflowID)
	}
	h.registry.AppendTurn(sessionID, session.Turn{
		Role:      session.RoleAssistant,
		Content:   result.Response,
		Timestamp: time.Now(),
	})

	h.push(conn, sessionID, protocol.ServerEnvelope{
		Type:        protocol.ServerMessageTypeComplete,
		Content:     result.Response,
		WorkflowIDs: append([]string{}, result.WorkflowIDs...),
	})
}

// push sends one envelope, logging failures instead of propagating them:
// transport trouble must never abort a run.
func (h *Handler) push(conn *Conn, sessionID string, msg protocol.ServerEnvelope) {
	if err := conn.Push(msg); err != nil {
		slog.Debug("dropped outbound message", "session_id", sessionID, "type", string(msg.Type), "error", err)
	}
}

// notificationFor maps a finished workflow tool to a toast notification.
// Tools that neither create nor update a workflow produce none.
func notificationFor(toolName string, success bool, errText string) *protocol.NotificationPayload {
	var created bool
	switch {
	case strings.Contains(toolName, "create_workflow"):
		created = true
	case strings.Contains(toolName, "update_") && strings.Contains(toolName, "workflow"):
		created = false
	default:
		return nil
	}

	notification := &protocol.NotificationPayload{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
	}

	switch {
	case created && success:
		notification.Type = protocol.NotificationTypeSuccess
		notification.Title = "Workflow Created"
		notification.Message = "The workflow was created successfully."
	case created && !success:
		notification.Type = protocol.NotificationTypeError
		notification.Title = "Workflow Creation Failed"
		notification.Message = failureMessage("The workflow could not be created.", errText)
	case !created && success:
		notification.Type = protocol.NotificationTypeSuccess
		notification.Title = "Workflow Updated"
		notification.Message = "The workflow was updated successfully."
	default:
		notification.Type = protocol.NotificationTypeError
		notification.Title = "Workflow Update Failed"
		notification.Message = failureMessage("The workflow could not be updated.", errText)
	}

	return notification
}

func failureMessage(fallback, errText string) string {
	if errText == "" {
		return fallback
	}
	return errText
}
