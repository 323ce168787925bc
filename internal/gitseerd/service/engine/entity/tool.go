package entity

// ToolCall represents an LLM's request to execute a tool.
type ToolCall struct {
	// ID is the provider-assigned identifier, unique within a streaming turn.
	ID string `json:"id"`
	// Name is the tool name to invoke.
	Name string `json:"name"`
	// Arguments is the JSON string of the tool arguments. During streaming
	// it accumulates fragment by fragment and may be incomplete.
	Arguments string `json:"arguments"`
}

// Valid reports whether the call is safe to echo back to a provider:
// providers reject tool_calls entries without an id or a name.
func (tc *ToolCall) Valid() bool {
	return tc != nil && tc.ID != "" && tc.Name != ""
}

// ToolResult represents the outcome of one tool call.
//
// Payload holds the full structured result and is only ever shown to the
// caller; the projection re-sent to the model is produced by the compactor
// and stored as the tool message content.
type ToolResult struct {
	// ToolCallID is the ID of the tool call this result corresponds to.
	ToolCallID string `json:"tool_call_id"`
	// Name is the tool name that was invoked.
	Name string `json:"name"`
	// Payload is the structured result data (nil on failure).
	Payload map[string]interface{} `json:"payload,omitempty"`
	// Error is the error message if the tool call failed.
	Error string `json:"error,omitempty"`
}

// NewErrorResult builds a failure result for a tool call. Gateway failures
// are folded into results so one failed call never aborts its siblings.
func NewErrorResult(toolCallID, name string, err error) *ToolResult {
	return &ToolResult{
		ToolCallID: toolCallID,
		Name:       name,
		Error:      err.Error(),
	}
}

// ToolDefinition declares one tool offered to the model: a name, a
// description, and a JSON-schema parameter object. The set of definitions
// is fixed configuration for the duration of a chat invocation.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// DefaultToolDefinitions returns the built-in tool schema: GitHub repository
// analysis plus page screenshots, both backed by MCP servers.
func DefaultToolDefinitions() []*ToolDefinition {
	return []*ToolDefinition{
		{
			Name: "fetch_github_repo_data",
			Description: "Fetches comprehensive data from a GitHub repository including stats, " +
				"issues, pull requests and commit history. Commit history, issues and pull requests " +
				"are fetched and displayed in UI tables, but are not included in the response text " +
				"to prevent context length issues.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"owner": map[string]interface{}{
						"type":        "string",
						"description": "The GitHub repository owner (username or organization)",
					},
					"repo": map[string]interface{}{
						"type":        "string",
						"description": "The GitHub repository name",
					},
				},
				"required": []string{"owner", "repo"},
			},
		},
		{
			Name:        "take_repo_screenshot",
			Description: "Takes a screenshot of a GitHub repository page using a headless browser",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"url": map[string]interface{}{
						"type":        "string",
						"description": "The full URL of the GitHub repository page (e.g. https://github.com/owner/repo)",
					},
				},
				"required": []string{"url"},
			},
		},
	}
}
