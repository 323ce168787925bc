package openai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/morgatz/gitseer/internal/gitseerd/service/llm"
	"github.com/morgatz/gitseer/pkg/logger"
	"github.com/morgatz/gitseer/pkg/utils/json"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "gpt-4o-mini"
	defaultHTTPTimeout = 120 * time.Second

	streamDoneMarker = "[DONE]"
)

var _ llm.StreamProvider = (*Client)(nil)

// Config holds the completed configuration for the Chat Completions client.
// Azure OpenAI is the same wire protocol behind a different URL scheme: the
// deployment name stands in for the model and the API version rides as a
// query parameter.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// Azure switches to the Azure endpoint layout and api-key header.
	Azure bool
	// Deployment is the Azure deployment name. Defaults to Model.
	Deployment string
	// APIVersion is the Azure api-version query parameter.
	APIVersion string

	Temperature *float32
	MaxTokens   int

	HTTPClient *http.Client
}

// Complete fills defaults and validates the config.
func (c *Config) Complete() error {
	if c.APIKey == "" {
		return fmt.Errorf("openai: api key is required")
	}
	if c.BaseURL == "" {
		if c.Azure {
			return fmt.Errorf("openai: azure endpoint is required")
		}
		c.BaseURL = defaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Azure {
		if c.Deployment == "" {
			c.Deployment = c.Model
		}
		if c.APIVersion == "" {
			return fmt.Errorf("openai: azure api version is required")
		}
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return nil
}

// Client streams chat completions from OpenAI or Azure OpenAI.
type Client struct {
	config Config
}

// New creates a Client from a completed config.
func New(config *Config) (*Client, error) {
	if err := config.Complete(); err != nil {
		return nil, err
	}
	return &Client{config: *config}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	if c.config.Azure {
		return "azure-openai"
	}
	return "openai"
}

// StreamChat performs one streamed completion, translating wire chunks into
// deltas for the handler.
func (c *Client) StreamChat(ctx context.Context, req *llm.ChatRequest, handler llm.StreamHandler) error {
	model := c.config.Model
	if c.config.Azure {
		model = c.config.Deployment
	}
	payload := chatRequest{
		Model:       model,
		Messages:    toWireMessages(req.Messages),
		Stream:      true,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}
	if len(req.Tools) > 0 {
		payload.Tools = toToolParams(req.Tools)
		payload.ToolChoice = "auto"
	}

	resp, err := c.doRequest(ctx, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return readAPIError(resp)
	}

	return consumeSSE(ctx, resp.Body, func(data string) error {
		data = strings.TrimSpace(data)
		if data == "" || data == streamDoneMarker {
			return nil
		}

		var chunk streamChunk
		if err := json.UnmarshalString(data, &chunk); err != nil {
			return fmt.Errorf("decode stream chunk: %w", err)
		}
		if len(chunk.Choices) == 0 {
			return nil
		}
		delta := chunk.Choices[0].Delta
		if delta == nil {
			// Complete-unit delivery: the turn arrives as a single message
			// chunk instead of deltas. Each tool call is already whole, so
			// forwarding one delta per call is enough to reassemble it.
			delta = chunk.Choices[0].Message
		}
		if delta == nil {
			return nil
		}

		if delta.Content != "" {
			if err := handler(&llm.Delta{Content: delta.Content}); err != nil {
				return err
			}
		}
		for _, tc := range delta.ToolCalls {
			d := &llm.ToolCallDelta{Index: tc.Index, ID: tc.ID}
			if tc.Function != nil {
				d.Name = tc.Function.Name
				d.Arguments = tc.Function.Arguments
			}
			if err := handler(&llm.Delta{ToolCall: d}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Client) endpoint() string {
	if c.config.Azure {
		return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			c.config.BaseURL, url.PathEscape(c.config.Deployment), url.QueryEscape(c.config.APIVersion))
	}
	return c.config.BaseURL + "/chat/completions"
}

func (c *Client) doRequest(ctx context.Context, payload chatRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.config.Azure {
		req.Header.Set("api-key", c.config.APIKey)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	logger.DebugX("openai", "POST %s model=%s messages=%d tools=%d",
		c.endpoint(), payload.Model, len(payload.Messages), len(payload.Tools))
	return c.config.HTTPClient.Do(req)
}

func readAPIError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("openai api status %d: %w", resp.StatusCode, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return APIError{StatusCode: resp.StatusCode, Type: apiErr.Error.Type, Message: apiErr.Error.Message}
	}
	return APIError{StatusCode: resp.StatusCode, Message: string(body)}
}
