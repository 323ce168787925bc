package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/morgatz/gitseer/pkg/utils/json"
)

// toolCaller is the slice of MCPServer the domain helpers need. Kept
// narrow so tests can substitute a fake.
type toolCaller interface {
	ToolNames() []string
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error)
}

// parseContent normalizes an MCP tool result into plain data. Image blocks
// win over text blocks (screenshot tools return both); text blocks are
// joined and parsed as JSON when they form a JSON document.
func parseContent(result *mcp.CallToolResult) interface{} {
	if result == nil {
		return nil
	}

	var texts []string
	for _, item := range result.Content {
		if img, ok := mcp.AsImageContent(item); ok && img.Data != "" {
			return img.Data
		}
		if txt, ok := mcp.AsTextContent(item); ok && txt.Text != "" {
			texts = append(texts, txt.Text)
		}
	}
	if len(texts) == 0 {
		return nil
	}

	combined := strings.Join(texts, "\n")
	var parsed interface{}
	if err := json.UnmarshalString(combined, &parsed); err == nil {
		return parsed
	}
	return combined
}

// resultError converts an IsError tool result into a Go error, using the
// result text as the message.
func resultError(result *mcp.CallToolResult) error {
	if result == nil || !result.IsError {
		return nil
	}
	var texts []string
	for _, item := range result.Content {
		if txt, ok := mcp.AsTextContent(item); ok && txt.Text != "" {
			texts = append(texts, txt.Text)
		}
	}
	if len(texts) == 0 {
		return fmt.Errorf("tool reported an error with no message")
	}
	return fmt.Errorf("%s", strings.Join(texts, "\n"))
}
