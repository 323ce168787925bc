package v1

// ChatMessage is one conversation turn supplied by the caller.
type ChatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ServerStatusInfo describes one MCP server's connection state.
type ServerStatusInfo struct {
	Name   string   `json:"name"`
	Status string   `json:"status"`
	Tools  []string `json:"tools,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// MCPStatusResponse is the body of GET /v1/mcp/status.
type MCPStatusResponse struct {
	Servers []ServerStatusInfo `json:"servers"`
}

// HealthzResponse is the body of GET /healthz.
type HealthzResponse struct {
	Status     string            `json:"status"`
	MCPServers map[string]string `json:"mcp_servers"`
}
