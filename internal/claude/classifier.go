package claude

import (
	"bytes"
	"log/slog"
)

// EventType tags an event produced from one line of subprocess output.
type EventType int

const (
	EventTypeText EventType = iota
	EventTypeToolStart
	EventTypeToolResult
)

func (t EventType) String() string {
	switch t {
	case EventTypeText:
		return "text"
	case EventTypeToolStart:
		return "tool_start"
	case EventTypeToolResult:
		return "tool_result"
	default:
		return "unknown"
	}
}

// Event is one classified piece of subprocess output.
type Event struct {
	Type EventType

	// Text fragment, for EventTypeText.
	Text string

	// Tool lifecycle fields.
	ToolName string
	ToolID   string
	Success  bool
	Error    string
}

// Classifier consumes one line of subprocess output at a time and emits at
// most one event per line. Its only state is the id of the tool invocation
// presumed in flight: the CLI runs tools sequentially within a turn, so a
// single slot suffices. Interleaved tool calls are a known limitation; a
// second start before a result simply replaces the slot.
type Classifier struct {
	currentToolID string
}

// NewClassifier creates a Classifier with no invocation in flight.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify inspects one output line. It returns (event, true) when the line
// carries something worth relaying, and never fails: blank lines, JSON noise,
// and unrecognized records all classify to nothing.
func (c *Classifier) Classify(line []byte) (Event, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Event{}, false
	}

	msg, err := ParseMessage(line)
	if err != nil {
		slog.Debug("non-JSON line from claude", "line", string(line))
		return Event{}, false
	}

	switch msg.Type {
	case MessageTypeContentBlockStart:
		block, ok := msg.ExtractContentBlock()
		if !ok || block.Type != ContentBlockTypeToolUse {
			return Event{}, false
		}
		c.currentToolID = block.ToolUseID
		return Event{
			Type:     EventTypeToolStart,
			ToolName: block.ToolUseName,
			ToolID:   block.ToolUseID,
		}, true

	case MessageTypeContentBlockDelta:
		block, ok := msg.ExtractContentBlock()
		if !ok || block.Type != ContentBlockTypeText || block.Text == "" {
			return Event{}, false
		}
		return Event{Type: EventTypeText, Text: block.Text}, true

	case MessageTypeMessageDelta:
		if text, ok := msg.GetString("delta", "text"); ok && text != "" {
			return Event{Type: EventTypeText, Text: text}, true
		}
		return Event{}, false

	case MessageTypeAssistant:
		// Snapshot record: the first text block carries the turn's text.
		content, ok := msg.GetArray("message", "content")
		if !ok {
			return Event{}, false
		}
		for _, item := range content {
			itemMap, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if itemType, _ := itemMap["type"].(string); itemType != "text" {
				continue
			}
			if text, ok := itemMap["text"].(string); ok && text != "" {
				return Event{Type: EventTypeText, Text: text}, true
			}
		}
		return Event{}, false

	case MessageTypeUser:
		result, ok := msg.ExtractToolResult()
		if !ok {
			return Event{}, false
		}
		event := Event{
			Type:    EventTypeToolResult,
			ToolID:  c.currentToolID,
			Success: !result.IsError,
		}
		if result.IsError {
			event.Error = result.Content
		}
		c.currentToolID = ""
		return event, true

	default:
		return Event{}, false
	}
}
