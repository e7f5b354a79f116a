// Package protocol defines the wire types exchanged with browser clients
// over the bridge websocket. The shapes are shared with the chat UI, so
// field names stay camelCase.
package protocol

import "time"

type ClientMessageType string

const (
	ClientMessageTypeMessage ClientMessageType = "message"
	ClientMessageTypePing    ClientMessageType = "ping"
)

type ServerMessageType string

const (
	ServerMessageTypeSession       ServerMessageType = "session"
	ServerMessageTypeChunk         ServerMessageType = "chunk"
	ServerMessageTypeActivity      ServerMessageType = "activity"
	ServerMessageTypeNotification  ServerMessageType = "notification"
	ServerMessageTypeComplete      ServerMessageType = "complete"
	ServerMessageTypeWorkflowError ServerMessageType = "workflow_error"
	ServerMessageTypeError         ServerMessageType = "error"
	ServerMessageTypePong          ServerMessageType = "pong"
)

type ClientEnvelope struct {
	Type    ClientMessageType `json:"type"`
	Content string            `json:"content,omitempty"`
}

type ServerEnvelope struct {
	Type         ServerMessageType    `json:"type"`
	SessionID    string               `json:"sessionId,omitempty"`
	Content      string               `json:"content,omitempty"`
	WorkflowIDs  []string             `json:"workflowIds"`
	Error        string               `json:"error,omitempty"`
	Activity     *ActivityEvent       `json:"activity,omitempty"`
	Notification *NotificationPayload `json:"notification,omitempty"`
}

type ActivityType string

const (
	ActivityTypeToolStart  ActivityType = "tool_start"
	ActivityTypeToolResult ActivityType = "tool_result"
	ActivityTypeStatus     ActivityType = "status"
)

// ActivityEvent describes one step of the assistant's tool lifecycle. It is
// ephemeral: relayed to the client and never stored in a session.
type ActivityEvent struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	ToolName  string       `json:"toolName,omitempty"`
	ToolID    string       `json:"toolId,omitempty"`
	Result    *ToolResult  `json:"result,omitempty"`
	Message   string       `json:"message,omitempty"`
}

type ToolResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type NotificationType string

const (
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeError   NotificationType = "error"
	NotificationTypeInfo    NotificationType = "info"
)

type NotificationPayload struct {
	ID         string           `json:"id"`
	Type       NotificationType `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	WorkflowID string           `json:"workflowId,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

// ErrorCallbackPayload is the body of POST /error-callback, sent by the
// workflow engine when a deployed workflow fails at runtime.
type ErrorCallbackPayload struct {
	WorkflowID   string `json:"workflowId"`
	WorkflowName string `json:"workflowName"`
	ErrorMessage string `json:"errorMessage"`
	FailedNode   string `json:"failedNode"`
	ExecutionID  string `json:"executionId"`
	Timestamp    string `json:"timestamp"`
}

// FixRequest is the body of POST /api/fix.
type FixRequest struct {
	WorkflowID   string `json:"workflowId"`
	WorkflowName string `json:"workflowName"`
	ErrorMessage string `json:"errorMessage"`
	FailedNode   string `json:"failedNode,omitempty"`
	ExecutionID  string `json:"executionId,omitempty"`
}

type FixResponse struct {
	Success      bool   `json:"success"`
	WorkflowID   string `json:"workflowId"`
	Diagnosis    string `json:"diagnosis"`
	FixApplied   string `json:"fixApplied"`
	Summary      string `json:"summary"`
	Error        string `json:"error,omitempty"`
	FullResponse string `json:"fullResponse,omitempty"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Sessions  int       `json:"sessions"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
