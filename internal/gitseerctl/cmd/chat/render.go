package chat

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	labelUser      = color.New(color.FgBlue, color.Bold)
	labelAssistant = color.New(color.FgMagenta, color.Bold)
	labelTool      = color.New(color.FgYellow)
	labelError     = color.New(color.FgRed, color.Bold)
	dim            = color.New(color.Faint)
)

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// renderMarkdown renders markdown content for terminal display. On any
// rendering failure the raw content is returned unchanged.
func renderMarkdown(content string, width int) string {
	if width <= 0 {
		width = 76
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithColorProfile(termenv.ANSI256),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

func printSeparator(out io.Writer) {
	n := termWidth() - 2
	if n < 20 {
		n = 20
	}
	fmt.Fprintln(out, dim.Sprint(strings.Repeat("-", n)))
}

// printToolCall shows a tool invocation as a single activity line.
func printToolCall(out io.Writer, tc *ToolCall) {
	if tc == nil {
		return
	}
	args := tc.Arguments
	if len(args) > 120 {
		args = args[:120] + "..."
	}
	fmt.Fprintf(out, "%s %s %s\n", labelTool.Sprint("⚙"), tc.Name, dim.Sprint(args))
}

// printToolResult shows the outcome of a tool call.
func printToolResult(out io.Writer, tr *ToolResult) {
	if tr == nil {
		return
	}
	if tr.Error != "" {
		fmt.Fprintf(out, "%s %s failed: %s\n", labelError.Sprint("✗"), tr.Name, tr.Error)
		return
	}
	fmt.Fprintf(out, "%s %s %s\n", labelTool.Sprint("✓"), tr.Name, dim.Sprint(summarizePayload(tr)))
}

// summarizePayload produces a one-line description of a tool result payload
// without dumping its contents.
func summarizePayload(tr *ToolResult) string {
	if len(tr.Payload) == 0 {
		return "done"
	}

	var parts []string
	for _, key := range []string{"repository", "commits", "issues", "pullRequests", "screenshot", "url"} {
		value, ok := tr.Payload[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case []interface{}:
			parts = append(parts, fmt.Sprintf("%s: %d", key, len(v)))
		case string:
			if key == "screenshot" {
				parts = append(parts, fmt.Sprintf("screenshot: %d bytes", len(v)))
			} else {
				parts = append(parts, fmt.Sprintf("%s: %s", key, v))
			}
		default:
			parts = append(parts, key)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d fields", len(tr.Payload))
	}
	return strings.Join(parts, ", ")
}
