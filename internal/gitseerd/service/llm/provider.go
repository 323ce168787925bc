package llm

import (
	"context"

	"github.com/morgatz/gitseer/internal/gitseerd/service/engine/entity"
)

// Delta is one incremental unit of a streamed model response. A delta
// carries either a fragment of the assistant's natural-language reply or a
// fragment of a tool call in progress, never both.
type Delta struct {
	// Content is a plain-text fragment of the assistant reply.
	Content string

	// ToolCall is a tool-call fragment, nil for content deltas.
	ToolCall *ToolCallDelta
}

// ToolCallDelta is a fragment of one tool call. Providers are inconsistent
// about which identity field they populate on which fragment: some key every
// fragment by ID, some only by positional index, and the ID may arrive
// several fragments in. The accumulator owns the correlation logic.
type ToolCallDelta struct {
	// Index is the position of the call within the assistant turn's
	// tool-call list. Nil when the provider did not supply one.
	Index *int

	// ID is the provider-assigned call identifier; often empty on early
	// fragments.
	ID string

	// Name is the tool name. Providers emit the full name at once, so a
	// non-empty value replaces any previous one.
	Name string

	// Arguments is an append-only substring of the JSON arguments document.
	Arguments string
}

// StreamHandler receives deltas in arrival order. Returning an error stops
// the stream and propagates the error to the caller of StreamChat.
type StreamHandler func(delta *Delta) error

// ChatRequest is one streamed completion request.
type ChatRequest struct {
	// Messages is the conversation to complete.
	Messages []*entity.Message

	// Tools is the fixed tool schema offered to the model.
	Tools []*entity.ToolDefinition
}

// StreamProvider is a streaming chat-model backend. The engine is parametric
// over the concrete provider as long as it speaks the Delta fragment model.
type StreamProvider interface {
	// Name returns the provider identifier for logging.
	Name() string

	// StreamChat performs one streamed completion, invoking handler for
	// every delta in arrival order. It returns only after the stream ends
	// or fails; a non-nil error means the turn produced no usable output.
	StreamChat(ctx context.Context, req *ChatRequest, handler StreamHandler) error
}
