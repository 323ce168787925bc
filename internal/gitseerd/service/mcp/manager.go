package mcp

import "context"

// Manager manages multiple MCP server connections and gives the tool
// gateway a unified way to reach them.
type Manager interface {
	// Initialize connects to all configured MCP servers.
	Initialize(ctx context.Context) error

	// Server returns the named server, connected or not.
	Server(name string) (*MCPServer, bool)

	// ServerNames returns all configured server names in config order.
	ServerNames() []string

	// ServerStatus returns the current status of a specific server.
	ServerStatus(serverName string) ServerStatus

	// Reconnect closes the named server's connection and establishes a new one.
	Reconnect(ctx context.Context, serverName string) error

	// Close closes all MCP server connections.
	Close() error
}
