package mcp

import (
	"context"
	"fmt"

	"github.com/morgatz/gitseer/internal/gitseerd/service/engine"
	"github.com/morgatz/gitseer/internal/gitseerd/service/engine/entity"
)

var _ engine.Gateway = (*Gateway)(nil)

// Gateway exposes the MCP-backed tools to the orchestration engine. It
// routes each tool name to the right MCP server and shapes the raw server
// output into the tool's payload contract.
type Gateway struct {
	manager Manager
}

// NewGateway creates a Gateway over the given manager.
func NewGateway(manager Manager) *Gateway {
	return &Gateway{manager: manager}
}

// Definitions returns the tool schema offered to the model.
func (g *Gateway) Definitions() []*entity.ToolDefinition {
	return entity.DefaultToolDefinitions()
}

// CallTool dispatches one tool call to its backing MCP server.
func (g *Gateway) CallTool(ctx context.Context, name string, args map[string]interface{}) (map[string]interface{}, error) {
	switch name {
	case "fetch_github_repo_data":
		owner, err := stringArg(args, "owner")
		if err != nil {
			return nil, err
		}
		repo, err := stringArg(args, "repo")
		if err != nil {
			return nil, err
		}
		srv, err := g.connectedServer(ServerGitHub)
		if err != nil {
			return nil, err
		}
		return fetchRepoData(ctx, srv, owner, repo)

	case "take_repo_screenshot":
		url, err := stringArg(args, "url")
		if err != nil {
			return nil, err
		}
		srv, err := g.connectedServer(ServerPlaywright)
		if err != nil {
			return nil, err
		}
		image, err := takeScreenshot(ctx, srv, url)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"screenshot": image,
			"url":        url,
		}, nil

	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

func (g *Gateway) connectedServer(name string) (*MCPServer, error) {
	srv, ok := g.manager.Server(name)
	if !ok {
		return nil, fmt.Errorf("MCP server %q is not configured", name)
	}
	if srv.Status() != ServerStatusConnected {
		return nil, fmt.Errorf("MCP server %q is not connected (%s)", name, srv.Status())
	}
	return srv, nil
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("argument %q must be a non-empty string", key)
	}
	return s, nil
}
