package options

import (
	"errors"

	"github.com/spf13/pflag"
)

// MCPOptions holds options for the MCP (Model Context Protocol) subsystem.
// MCP servers are described in a standalone configuration file using the
// Claude Desktop mcpServers format.
type MCPOptions struct {
	// ConfigFile is the path to the MCP configuration file.
	ConfigFile string `json:"config_file" mapstructure:"config_file"`
}

// NewMCPOptions creates a default MCPOptions instance.
func NewMCPOptions() *MCPOptions {
	return &MCPOptions{
		ConfigFile: "conf/mcp.json",
	}
}

// Validate checks the MCPOptions for correctness.
func (o *MCPOptions) Validate() []error {
	if o.ConfigFile == "" {
		return []error{errors.New("mcp: config_file is required")}
	}
	return nil
}

// AddFlags adds the MCP flags to the given flag set.
func (o *MCPOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ConfigFile, "mcp.config-file", o.ConfigFile, "Path to the MCP configuration file.")
}
