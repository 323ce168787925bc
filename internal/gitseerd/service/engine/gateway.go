package engine

import (
	"context"

	"github.com/morgatz/gitseer/internal/gitseerd/service/engine/entity"
)

// Gateway executes tool calls on behalf of the engine. The engine never
// knows how a tool is implemented; it hands over a name and parsed
// arguments and gets back a structured payload or an error.
type Gateway interface {
	// Definitions returns the tool schema offered to the model. The set is
	// fixed for the lifetime of a chat invocation.
	Definitions() []*entity.ToolDefinition

	// CallTool executes one tool. The error return covers execution
	// failure; the engine folds it into a ToolResult rather than aborting
	// the invocation.
	CallTool(ctx context.Context, name string, args map[string]interface{}) (map[string]interface{}, error)
}
