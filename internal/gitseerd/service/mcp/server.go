package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/morgatz/gitseer/pkg/logger"
)

// ServerStatus represents the connection state of an MCP server.
type ServerStatus int

const (
	ServerStatusDisconnected ServerStatus = iota
	ServerStatusConnecting
	ServerStatusConnected
	ServerStatusError
)

func (s ServerStatus) String() string {
	switch s {
	case ServerStatusDisconnected:
		return "Disconnected"
	case ServerStatusConnecting:
		return "Connecting"
	case ServerStatusConnected:
		return "Connected"
	case ServerStatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// MCPServer is one connected MCP server with its discovered tool list.
type MCPServer struct {
	name   string
	config *ServerConfig

	mu     sync.RWMutex
	client *client.Client
	tools  []mcp.Tool
	status ServerStatus
	err    error
}

// NewMCPServer creates a new MCP server instance.
func NewMCPServer(name string, cfg *ServerConfig) *MCPServer {
	return &MCPServer{
		name:   name,
		status: ServerStatusDisconnected,
		config: cfg,
	}
}

// Name returns the server name.
func (s *MCPServer) Name() string {
	return s.name
}

// Status returns the current connection status.
func (s *MCPServer) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the last connection error, if any.
func (s *MCPServer) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// ToolNames returns the names of the discovered tools.
func (s *MCPServer) ToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	for i, t := range s.tools {
		names[i] = t.Name
	}
	return names
}

// Connect establishes the connection and discovers tools.
func (s *MCPServer) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = ServerStatusConnecting
	s.err = nil

	cli, err := s.createClient(ctx)
	if err != nil {
		s.status = ServerStatusError
		s.err = err
		return fmt.Errorf("[MCP] server %q: failed to create client: %w", s.name, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "gitseer",
		Version: "0.1.0",
	}

	if _, err := cli.Initialize(ctx, initReq); err != nil {
		s.status = ServerStatusError
		s.err = err
		_ = cli.Close()
		return fmt.Errorf("[MCP] server %q: failed to initialize: %w", s.name, err)
	}

	toolsResp, err := cli.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		s.status = ServerStatusError
		s.err = err
		_ = cli.Close()
		return fmt.Errorf("[MCP] server %q: failed to list tools: %w", s.name, err)
	}

	s.client = cli
	s.tools = toolsResp.Tools
	s.status = ServerStatusConnected

	logger.InfoX("mcp", "server %q connected, %d tools discovered", s.name, len(s.tools))
	return nil
}

// CallTool invokes one tool on this server.
func (s *MCPServer) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	s.mu.RLock()
	cli := s.client
	s.mu.RUnlock()

	if cli == nil {
		return nil, fmt.Errorf("[MCP] server %q is not connected", s.name)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return cli.CallTool(ctx, req)
}

// Reconnect closes the current connection and establishes a new one.
func (s *MCPServer) Reconnect(ctx context.Context) error {
	s.Close()
	return s.Connect(ctx)
}

// Close closes the current connection and releases resources.
func (s *MCPServer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		if err := s.client.Close(); err != nil {
			logger.Warn("[MCP] server %q: failed to close client: %v", s.name, err)
		}
		s.client = nil
	}

	s.tools = nil
	s.status = ServerStatusDisconnected
	s.err = nil
}

// createClient creates a transport-specific MCP client.
// Must be called with s.mu held.
func (s *MCPServer) createClient(ctx context.Context) (*client.Client, error) {
	switch s.config.Transport {
	case "stdio":
		return client.NewStdioMCPClient(s.config.Command, s.config.Env, s.config.Args...)
	case "sse":
		cli, err := client.NewSSEMCPClient(s.config.URL)
		if err != nil {
			return nil, err
		}
		// The SSE transport needs an explicit start before the handshake.
		if err := cli.Start(ctx); err != nil {
			return nil, err
		}
		return cli, nil
	default:
		return nil, fmt.Errorf("unknown transport: %s", s.config.Transport)
	}
}
