package chat

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/morgatz/gitseer/pkg/utils/json"
)

// ChatMessage is a single conversation turn sent to the daemon.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body for /v1/chat.
type chatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// StreamEvent is one event from the daemon's SSE stream.
type StreamEvent struct {
	Type     string      `json:"type"`
	Content  string      `json:"content,omitempty"`
	ToolCall *ToolCall   `json:"toolCall,omitempty"`
	Result   *ToolResult `json:"result,omitempty"`
	Error    string      `json:"error,omitempty"`

	ToolCalls   []*ToolCall   `json:"toolCalls,omitempty"`
	ToolResults []*ToolResult `json:"toolResults,omitempty"`
}

// ToolCall is a tool invocation announced by the daemon.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResult is the outcome of one tool call.
type ToolResult struct {
	ToolCallID string                 `json:"tool_call_id"`
	Name       string                 `json:"name"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// Event type names on the wire.
const (
	EventContent    = "content"
	EventToolCall   = "tool_call"
	EventToolResult = "tool_result"
	EventDone       = "done"
	EventError      = "error"
)

// EventCallback is called for each event during streaming.
type EventCallback func(ev *StreamEvent)

// Client is the HTTP client for the gitseerd /v1/chat stream.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a new client.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		// Streamed tool rounds can take a while; no overall timeout, the
		// caller's context bounds the request.
		httpClient = &http.Client{Timeout: 0}
	}

	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: httpClient,
	}
}

// ChatStream sends messages and streams the response events, calling cb for
// each. It returns the accumulated assistant text when the stream ends.
// A terminal error event is surfaced as a Go error after cb has seen it.
func (c *Client) ChatStream(ctx context.Context, messages []ChatMessage, cb EventCallback) (string, error) {
	body, err := json.Marshal(chatRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var fullContent strings.Builder
	var terminalErr error

	scanner := bufio.NewScanner(resp.Body)
	// Screenshot payloads make for large frames.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		var ev StreamEvent
		if err := json.UnmarshalString(data, &ev); err != nil {
			continue
		}

		if ev.Type == EventContent {
			fullContent.WriteString(ev.Content)
		}
		if ev.Type == EventError {
			terminalErr = fmt.Errorf("%s", ev.Error)
		}
		if cb != nil {
			cb(&ev)
		}
	}

	if err := scanner.Err(); err != nil {
		return fullContent.String(), fmt.Errorf("read stream: %w", err)
	}

	return fullContent.String(), terminalErr
}

// Healthz fetches the daemon's health document.
func (c *Client) Healthz(ctx context.Context) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/healthz", nil)
	if err != nil {
		return nil, err
	}

	cli := c.HTTPClient
	if cli.Timeout == 0 {
		cli = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
