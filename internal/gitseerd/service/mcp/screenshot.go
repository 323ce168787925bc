package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/morgatz/gitseer/pkg/logger"
)

const (
	navigateToolDefault   = "browser_navigate"
	screenshotToolDefault = "browser_take_screenshot"
)

var screenshotPathPattern = regexp.MustCompile(`(sandbox:)?([/\w\-.]+\.(?:png|jpg|jpeg))`)

// takeScreenshot navigates a Playwright MCP server to url and captures the
// page, returning the image as base64. Servers differ in tool naming and
// in whether they return image data inline or a file path; both are
// handled.
func takeScreenshot(ctx context.Context, srv toolCaller, url string) (string, error) {
	navigate, screenshot := pickBrowserTools(srv)
	logger.DebugX("mcp", "screenshot via %s + %s", navigate, screenshot)

	result, err := srv.CallTool(ctx, navigate, map[string]interface{}{"url": url})
	if err != nil {
		return "", fmt.Errorf("navigate to %s failed: %w", url, err)
	}
	if err := resultError(result); err != nil {
		return "", fmt.Errorf("navigate to %s failed: %w", url, err)
	}

	// browser_take_screenshot takes capture options; snapshot-style tools
	// take none.
	var args map[string]interface{}
	if screenshot == screenshotToolDefault {
		args = map[string]interface{}{"fullPage": false, "type": "png"}
	} else {
		args = map[string]interface{}{}
	}
	result, err = srv.CallTool(ctx, screenshot, args)
	if err != nil {
		return "", fmt.Errorf("screenshot tool %s failed: %w", screenshot, err)
	}
	if err := resultError(result); err != nil {
		return "", fmt.Errorf("screenshot tool %s failed: %w", screenshot, err)
	}

	content := parseContent(result)
	text, ok := content.(string)
	if !ok || text == "" {
		return "", fmt.Errorf("screenshot tool %s returned no image data", screenshot)
	}
	return extractImageData(text)
}

// pickBrowserTools resolves the navigate and screenshot tool names from the
// server's advertised list, preferring the canonical Playwright MCP names.
func pickBrowserTools(srv toolCaller) (navigate, screenshot string) {
	for _, name := range srv.ToolNames() {
		lower := strings.ToLower(name)

		if name == navigateToolDefault {
			navigate = name
		} else if navigate == "" && strings.Contains(lower, "navigate") && !strings.Contains(lower, "back") {
			navigate = name
		}

		if name == screenshotToolDefault {
			screenshot = name
		} else if screenshot == "" &&
			(strings.Contains(lower, "screenshot") || strings.Contains(lower, "snapshot") || strings.Contains(lower, "capture")) {
			screenshot = name
		}
	}
	if navigate == "" {
		navigate = navigateToolDefault
	}
	if screenshot == "" {
		screenshot = screenshotToolDefault
	}
	return navigate, screenshot
}

// extractImageData turns a screenshot tool's text payload into base64 image
// data. Inline base64 passes through; a file path (some servers write the
// capture to disk and answer with its location) is read and encoded.
func extractImageData(text string) (string, error) {
	if !looksLikeFilePath(text) {
		return text, nil
	}

	path := strings.TrimSpace(strings.TrimPrefix(text, "sandbox:"))
	if m := screenshotPathPattern.FindStringSubmatch(text); m != nil {
		path = m[2]
	}

	logger.Debug("[MCP] reading screenshot from file %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		// The server may have dropped it in its own output directory.
		alt := "/tmp/" + path[strings.LastIndex(path, "/")+1:]
		if altData, altErr := os.ReadFile(alt); altErr == nil {
			return base64.StdEncoding.EncodeToString(altData), nil
		}
		return "", fmt.Errorf("could not read screenshot file %s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func looksLikeFilePath(text string) bool {
	return strings.HasPrefix(text, "sandbox:") ||
		strings.HasPrefix(text, "/tmp/") ||
		strings.Contains(text, ".png") ||
		strings.Contains(text, ".jpg")
}
