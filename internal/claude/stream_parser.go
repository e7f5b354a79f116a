// Package claude bridges conversations to the claude CLI: it spawns the
// process in programmatic mode, feeds it a transcript, and turns its NDJSON
// output stream into classified events.
package claude

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MessageType represents the type of a record in the CLI's streaming output.
type MessageType string

const (
	MessageTypeContentBlockStart MessageType = "content_block_start"
	MessageTypeContentBlockDelta MessageType = "content_block_delta"
	MessageTypeContentBlockStop  MessageType = "content_block_stop"
	MessageTypeMessageDelta      MessageType = "message_delta"
	MessageTypeMessageStop       MessageType = "message_stop"
	MessageTypeAssistant         MessageType = "assistant"
	MessageTypeUser              MessageType = "user"
	MessageTypeSystem            MessageType = "system"
)

// Message represents a parsed JSON record from the CLI's stream output.
type Message struct {
	Type MessageType
	Data map[string]any
}

// ParseMessage parses a single line of the stream. It handles the CLI's
// NDJSON format, which wraps API events in a stream_event envelope while
// emitting system/user/assistant records at the top level.
func ParseMessage(line []byte) (Message, error) {
	if len(line) == 0 {
		return Message{}, fmt.Errorf("empty message")
	}

	var envelope struct {
		Type  string          `json:"type"`
		Event json.RawMessage `json:"event"`
	}
	if err := json.Unmarshal(line, &envelope); err != nil {
		return Message{}, fmt.Errorf("failed to parse envelope: %w", err)
	}

	if envelope.Type == "stream_event" && len(envelope.Event) > 0 {
		var inner struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(envelope.Event, &inner); err != nil {
			return Message{}, fmt.Errorf("failed to parse inner event type: %w", err)
		}

		var data map[string]any
		if err := json.Unmarshal(envelope.Event, &data); err != nil {
			return Message{}, fmt.Errorf("failed to parse inner event data: %w", err)
		}

		return Message{Type: MessageType(inner.Type), Data: data}, nil
	}

	var data map[string]any
	if err := json.Unmarshal(line, &data); err != nil {
		return Message{}, fmt.Errorf("failed to parse message data: %w", err)
	}

	return Message{Type: MessageType(envelope.Type), Data: data}, nil
}

// GetString safely extracts a string value from the message data.
func (m Message) GetString(path ...string) (string, bool) {
	value, ok := m.getValue(path...)
	if !ok {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

// GetMap safely extracts a map value from the message data.
func (m Message) GetMap(path ...string) (map[string]any, bool) {
	value, ok := m.getValue(path...)
	if !ok {
		return nil, false
	}
	mapVal, ok := value.(map[string]any)
	return mapVal, ok
}

// GetArray safely extracts an array value from the message data.
func (m Message) GetArray(path ...string) ([]any, bool) {
	value, ok := m.getValue(path...)
	if !ok {
		return nil, false
	}
	arrVal, ok := value.([]any)
	return arrVal, ok
}

// getValue traverses the message data using the provided path.
func (m Message) getValue(path ...string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}

	current := any(m.Data)
	for _, key := range path {
		mapVal, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = mapVal[key]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// ContentBlockType represents the type of a content block.
type ContentBlockType string

const (
	ContentBlockTypeText    ContentBlockType = "text"
	ContentBlockTypeToolUse ContentBlockType = "tool_use"
)

// ContentBlock represents a content block carried by a block-start or delta
// record.
type ContentBlock struct {
	Type        ContentBlockType
	Text        string
	ToolUseName string
	ToolUseID   string
}

// ExtractContentBlock extracts content block information from a
// content_block_start or content_block_delta record.
func (m Message) ExtractContentBlock() (ContentBlock, bool) {
	block := ContentBlock{}

	if contentBlock, ok := m.GetMap("content_block"); ok {
		if blockType, ok := contentBlock["type"].(string); ok {
			block.Type = ContentBlockType(blockType)
		}

		switch block.Type {
		case ContentBlockTypeText:
			if text, ok := contentBlock["text"].(string); ok {
				block.Text = text
			}
		case ContentBlockTypeToolUse:
			if name, ok := contentBlock["name"].(string); ok {
				block.ToolUseName = name
			}
			if id, ok := contentBlock["id"].(string); ok {
				block.ToolUseID = id
			}
		}

		return block, true
	}

	if delta, ok := m.GetMap("delta"); ok {
		deltaType, _ := delta["type"].(string)
		switch deltaType {
		case "text_delta":
			block.Type = ContentBlockTypeText
			if text, ok := delta["text"].(string); ok {
				block.Text = text
			}
			return block, true
		case "input_json_delta":
			// Tool input streaming in; not text output.
			block.Type = ContentBlockTypeToolUse
			return block, true
		}
	}

	return block, false
}

// ToolResultInfo is the terminal outcome of a tool invocation, carried by a
// user record wrapping a tool_result content item.
type ToolResultInfo struct {
	ToolUseID string
	IsError   bool
	Content   string
}

// ExtractToolResult extracts tool result information from a user record.
func (m Message) ExtractToolResult() (ToolResultInfo, bool) {
	content, ok := m.GetArray("message", "content")
	if !ok {
		return ToolResultInfo{}, false
	}

	for _, item := range content {
		itemMap, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if itemType, _ := itemMap["type"].(string); itemType != "tool_result" {
			continue
		}

		info := ToolResultInfo{}
		if id, ok := itemMap["tool_use_id"].(string); ok {
			info.ToolUseID = id
		}
		if isError, ok := itemMap["is_error"].(bool); ok {
			info.IsError = isError
		}
		// The result content is either a plain string or an array of
		// content blocks whose text parts carry the message.
		switch content := itemMap["content"].(type) {
		case string:
			info.Content = content
		case []any:
			var parts []string
			for _, part := range content {
				partMap, ok := part.(map[string]any)
				if !ok {
					continue
				}
				if partType, _ := partMap["type"].(string); partType != "text" {
					continue
				}
				if text, ok := partMap["text"].(string); ok && text != "" {
					parts = append(parts, text)
				}
			}
			info.Content = strings.Join(parts, "\n")
		}
		return info, true
	}

	return ToolResultInfo{}, false
}
