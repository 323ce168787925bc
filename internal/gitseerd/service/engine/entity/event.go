package entity

// EventType identifies the type of a streaming chat event.
type EventType string

const (
	// EventContent is a chunk of assistant text being streamed.
	EventContent EventType = "content"

	// EventToolCall announces a fully reassembled tool call about to be
	// dispatched.
	EventToolCall EventType = "tool_call"

	// EventToolResult carries the caller-facing result of one tool call.
	EventToolResult EventType = "tool_result"

	// EventDone terminates the stream after a completed invocation.
	EventDone EventType = "done"

	// EventError terminates the stream after an unrecoverable failure.
	EventError EventType = "error"
)

// ChatEvent is a self-contained streaming event emitted during a chat
// invocation. Exactly one of the payload fields is populated, matching Type.
// Every invocation ends with exactly one terminal event (done or error).
type ChatEvent struct {
	// Type identifies which kind of event this is.
	Type EventType `json:"type"`

	// Content contains the text fragment for EventContent events.
	Content string `json:"content,omitempty"`

	// ToolCall contains the announced call for EventToolCall events.
	ToolCall *ToolCall `json:"toolCall,omitempty"`

	// Result contains the full result for EventToolResult events.
	Result *ToolResult `json:"result,omitempty"`

	// ToolCalls and ToolResults summarize the invocation for EventDone.
	ToolCalls   []*ToolCall   `json:"toolCalls,omitempty"`
	ToolResults []*ToolResult `json:"toolResults,omitempty"`

	// Error contains the failure description for EventError events.
	Error string `json:"error,omitempty"`
}
