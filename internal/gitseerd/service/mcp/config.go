package mcp

import (
	"fmt"
	"os"

	"github.com/morgatz/gitseer/pkg/utils/json"
)

// MCPConfig holds the top-level MCP configuration.
// Compatible with Claude Desktop / VS Code MCP config format.
//
// File format (mcp.json):
//
//	{
//	  "mcpServers": {
//	    "github": {
//	      "transport": "stdio",
//	      "command": "npx",
//	      "args": ["@modelcontextprotocol/server-github"],
//	      "env": ["GITHUB_PERSONAL_ACCESS_TOKEN=..."]
//	    }
//	  }
//	}
type MCPConfig struct {
	// MCPServers maps server name to server configuration.
	// Uses "mcpServers" key for Claude Desktop compatibility.
	MCPServers map[string]*ServerConfig `json:"mcpServers"`
}

// ServerConfig defines the configuration for a single MCP server.
// Supports two transport types: "stdio" (subprocess) and "sse" (HTTP SSE).
type ServerConfig struct {
	// Transport is the MCP transport protocol: "stdio" or "sse".
	// Default: "stdio".
	Transport string `json:"transport,omitempty"`

	// --- stdio transport fields ---

	// Command is the executable to launch (stdio only).
	Command string `json:"command,omitempty"`

	// Args are the command-line arguments (stdio only).
	Args []string `json:"args,omitempty"`

	// Env is the environment variables for the subprocess (stdio only).
	// Format: ["KEY=VALUE", ...].
	Env []string `json:"env,omitempty"`

	// --- sse transport fields ---

	// URL is the SSE endpoint URL (sse only).
	URL string `json:"url,omitempty"`
}

// LoadMCPConfig loads the MCP configuration from a JSON file. If the file
// does not exist, returns the built-in GitHub/Playwright defaults.
func LoadMCPConfig(path string) (*MCPConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultMCPConfig(), nil
		}
		return nil, fmt.Errorf("failed to read MCP config file %q: %w", path, err)
	}

	cfg := &MCPConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse MCP config file %q: %w", path, err)
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]*ServerConfig)
	}
	return cfg, nil
}

// DefaultMCPConfig returns the built-in server set: the GitHub MCP server
// for repository data and the Playwright MCP server for screenshots. The
// GitHub token is picked up from the environment.
func DefaultMCPConfig() *MCPConfig {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_PERSONAL_ACCESS_TOKEN")
	}
	return &MCPConfig{
		MCPServers: map[string]*ServerConfig{
			ServerGitHub: {
				Transport: "stdio",
				Command:   "npx",
				Args:      []string{"@modelcontextprotocol/server-github"},
				Env:       []string{"GITHUB_PERSONAL_ACCESS_TOKEN=" + token},
			},
			ServerPlaywright: {
				Transport: "stdio",
				Command:   "npx",
				Args:      []string{"@playwright/mcp"},
			},
		},
	}
}

// Well-known server names the gateway routes tool calls to.
const (
	ServerGitHub     = "github"
	ServerPlaywright = "playwright"
)

// Validate checks the MCP configuration for obvious errors.
func (c *MCPConfig) Validate() []error {
	var errs []error
	for name, srv := range c.MCPServers {
		if srv.Transport == "" {
			srv.Transport = "stdio"
		}
		switch srv.Transport {
		case "stdio":
			if srv.Command == "" {
				errs = append(errs, fmt.Errorf("mcpServers.%s: command is required for stdio transport", name))
			}
		case "sse":
			if srv.URL == "" {
				errs = append(errs, fmt.Errorf("mcpServers.%s: url is required for sse transport", name))
			}
		default:
			errs = append(errs, fmt.Errorf("mcpServers.%s: unsupported transport %q (must be 'stdio' or 'sse')", name, srv.Transport))
		}
	}
	return errs
}
