package claude

import (
	"testing"
)

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType MessageType
		wantErr  bool
	}{
		{
			name:     "content_block_start - tool use",
			input:    `{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_1","name":"n8n_create_workflow","input":{}}}`,
			wantType: MessageTypeContentBlockStart,
		},
		{
			name:     "content_block_delta - text",
			input:    `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`,
			wantType: MessageTypeContentBlockDelta,
		},
		{
			name:     "message_delta",
			input:    `{"type":"message_delta","delta":{"stop_reason":"end_turn"}}`,
			wantType: MessageTypeMessageDelta,
		},
		{
			name:     "assistant snapshot",
			input:    `{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"hi"}]}}`,
			wantType: MessageTypeAssistant,
		},
		{
			name:     "stream_event envelope unwraps",
			input:    `{"type":"stream_event","event":{"type":"content_block_delta","delta":{"type":"text_delta","text":"x"}}}`,
			wantType: MessageTypeContentBlockDelta,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			input:   `{invalid json}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseMessage([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && msg.Type != tt.wantType {
				t.Errorf("ParseMessage() type = %v, want %v", msg.Type, tt.wantType)
			}
		})
	}
}

func TestMessage_GetString(t *testing.T) {
	input := `{"type":"test","delta":{"text":"hello"},"nested":{"deep":{"value":"world"}}}`
	msg, err := ParseMessage([]byte(input))
	if err != nil {
		t.Fatalf("ParseMessage() failed: %v", err)
	}

	tests := []struct {
		name   string
		path   []string
		want   string
		wantOk bool
	}{
		{
			name:   "single level",
			path:   []string{"type"},
			want:   "test",
			wantOk: true,
		},
		{
			name:   "nested",
			path:   []string{"delta", "text"},
			want:   "hello",
			wantOk: true,
		},
		{
			name:   "deep nested",
			path:   []string{"nested", "deep", "value"},
			want:   "world",
			wantOk: true,
		},
		{
			name:   "missing path",
			path:   []string{"missing"},
			wantOk: false,
		},
		{
			name:   "wrong type",
			path:   []string{"delta"},
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := msg.GetString(tt.path...)
			if ok != tt.wantOk {
				t.Errorf("GetString() ok = %v, want %v", ok, tt.wantOk)
				return
			}
			if ok && got != tt.want {
				t.Errorf("GetString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessage_ExtractContentBlock(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   ContentBlock
		wantOk bool
	}{
		{
			name:  "text block start",
			input: `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
			want: ContentBlock{
				Type: ContentBlockTypeText,
			},
			wantOk: true,
		},
		{
			name:  "text delta",
			input: `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`,
			want: ContentBlock{
				Type: ContentBlockTypeText,
				Text: "Hello",
			},
			wantOk: true,
		},
		{
			name:  "tool use start",
			input: `{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"tool_123","name":"n8n_get_workflow","input":{}}}`,
			want: ContentBlock{
				Type:        ContentBlockTypeToolUse,
				ToolUseName: "n8n_get_workflow",
				ToolUseID:   "tool_123",
			},
			wantOk: true,
		},
		{
			name:  "input json delta is not text",
			input: `{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"na"}}`,
			want: ContentBlock{
				Type: ContentBlockTypeToolUse,
			},
			wantOk: true,
		},
		{
			name:   "no content block",
			input:  `{"type":"message_stop"}`,
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseMessage([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseMessage() failed: %v", err)
			}

			got, ok := msg.ExtractContentBlock()
			if ok != tt.wantOk {
				t.Errorf("ExtractContentBlock() ok = %v, want %v", ok, tt.wantOk)
				return
			}
			if ok && got != tt.want {
				t.Errorf("ExtractContentBlock() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMessage_ExtractToolResult(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   ToolResultInfo
		wantOk bool
	}{
		{
			name:  "successful result",
			input: `{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"toolu_1","content":"done"}]}}`,
			want: ToolResultInfo{
				ToolUseID: "toolu_1",
				Content:   "done",
			},
			wantOk: true,
		},
		{
			name:  "error result",
			input: `{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"toolu_2","is_error":true,"content":"node not found"}]}}`,
			want: ToolResultInfo{
				ToolUseID: "toolu_2",
				IsError:   true,
				Content:   "node not found",
			},
			wantOk: true,
		},
		{
			name:  "array content error result",
			input: `{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"toolu_3","is_error":true,"content":[{"type":"text","text":"node type not found"}]}]}}`,
			want: ToolResultInfo{
				ToolUseID: "toolu_3",
				IsError:   true,
				Content:   "node type not found",
			},
			wantOk: true,
		},
		{
			name:  "array content joins text blocks",
			input: `{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"toolu_4","content":[{"type":"text","text":"first"},{"type":"image","source":{}},{"type":"text","text":"second"}]}]}}`,
			want: ToolResultInfo{
				ToolUseID: "toolu_4",
				Content:   "first\nsecond",
			},
			wantOk: true,
		},
		{
			name:   "user record without tool result",
			input:  `{"type":"user","message":{"role":"user","content":[{"type":"text","text":"hi"}]}}`,
			wantOk: false,
		},
		{
			name:   "no message",
			input:  `{"type":"user"}`,
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseMessage([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseMessage() failed: %v", err)
			}

			got, ok := msg.ExtractToolResult()
			if ok != tt.wantOk {
				t.Errorf("ExtractToolResult() ok = %v, want %v", ok, tt.wantOk)
				return
			}
			if ok && got != tt.want {
				t.Errorf("ExtractToolResult() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
