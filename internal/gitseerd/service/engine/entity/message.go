package entity

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents a single turn in a conversation.
//
// This is the domain model threaded through the orchestration engine;
// conversion to the provider wire format is handled by the llm layer.
type Message struct {
	// Role is the sender role (system/user/assistant/tool).
	Role Role `json:"role"`

	// Content is the text content of the message. Empty on assistant
	// turns that carry only tool calls.
	Content string `json:"content"`

	// Name is the tool name (only present when Role == RoleTool).
	Name string `json:"name,omitempty"`

	// ToolCalls are tool invocations requested by the assistant.
	// Only present when Role == RoleAssistant and the model wants to call tools.
	ToolCalls []*ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID is the ID of the tool call this message responds to.
	// Only present when Role == RoleTool. It must reference a ToolCalls
	// entry of the closest preceding assistant message; the compactor
	// keeps this pairing intact under truncation.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message, optionally carrying
// tool calls.
func NewAssistantMessage(content string, toolCalls []*ToolCall) *Message {
	return &Message{Role: RoleAssistant, Content: content, ToolCalls: toolCalls}
}

// NewToolMessage creates a tool result message paired to toolCallID.
func NewToolMessage(toolCallID, name, content string) *Message {
	return &Message{
		Role:       RoleTool,
		Content:    content,
		Name:       name,
		ToolCallID: toolCallID,
	}
}

// Clone returns a shallow copy of the message with its own ToolCalls slice.
// ToolCall entries are copied by value so callers may drop or rewrite them
// without touching the original.
func (m *Message) Clone() *Message {
	cp := *m
	if len(m.ToolCalls) > 0 {
		cp.ToolCalls = make([]*ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			tcCopy := *tc
			cp.ToolCalls[i] = &tcCopy
		}
	}
	return &cp
}

// InvokesTools reports whether this is an assistant message that requested
// tool calls. Such a message forms a truncation group together with the
// tool messages answering it.
func (m *Message) InvokesTools() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}
