package openai

import (
	"fmt"

	"github.com/morgatz/gitseer/internal/gitseerd/service/engine/entity"
)

// Chat Completions wire types. Only the fields this client touches.

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Tools       []toolParam   `json:"tools,omitempty"`
	ToolChoice  string        `json:"tool_choice,omitempty"`
	Stream      bool          `json:"stream"`
	Temperature *float32      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	Name       string         `json:"name,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type toolParam struct {
	Type     string        `json:"type"`
	Function functionDef `json:"function"`
}

type functionDef struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// Streaming chunk types.

type streamChunk struct {
	Choices []streamChoice `json:"choices"`
}

type streamChoice struct {
	Delta *streamDelta `json:"delta"`
	// Some gateways deliver a whole turn as one non-delta message chunk.
	// The shape matches streamDelta, minus per-fragment indices.
	Message      *streamDelta `json:"message"`
	FinishReason string       `json:"finish_reason"`
}

type streamDelta struct {
	Content   string            `json:"content"`
	ToolCalls []streamToolDelta `json:"tool_calls"`
}

type streamToolDelta struct {
	Index    *int          `json:"index"`
	ID       string        `json:"id"`
	Function *wireFunction `json:"function"`
}

// Error envelope.

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// APIError is a non-2xx answer from the completion endpoint.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("openai api status %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("openai api status %d: %s", e.StatusCode, e.Message)
}

// toWireMessages converts domain messages to the provider wire format.
func toWireMessages(messages []*entity.Message) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, msg := range messages {
		wm := wireMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
		}
		for _, tc := range msg.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: wireFunction{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out = append(out, wm)
	}
	return out
}

// toToolParams converts tool definitions to the provider wire format.
func toToolParams(tools []*entity.ToolDefinition) []toolParam {
	out := make([]toolParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, toolParam{
			Type: "function",
			Function: functionDef{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}
