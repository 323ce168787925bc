package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/morgatz/gitseer/internal/gitseerd/service/engine/entity"
	"github.com/morgatz/gitseer/internal/gitseerd/service/llm"
)

func sseBody(chunks ...string) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString("data: ")
		b.WriteString(c)
		b.WriteString("\n\n")
	}
	b.WriteString("data: [DONE]\n\n")
	return b.String()
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(&Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client, srv
}

func TestStreamChatContentAndToolDeltas(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseBody(
			`{"choices":[{"delta":{"content":"Hel"}}]}`,
			`{"choices":[{"delta":{"content":"lo"}}]}`,
			`{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"c1","function":{"name":"fetch_github_repo_data","arguments":""}}]}}]}`,
			`{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"owner\":\"golang\"}"}}]}}]}`,
			`{"choices":[{"delta":{},"finish_reason":"tool_calls"}]}`,
		))
	})

	var content strings.Builder
	var toolDeltas []*llm.ToolCallDelta
	err := client.StreamChat(context.Background(), &llm.ChatRequest{
		Messages: []*entity.Message{entity.NewUserMessage("hi")},
		Tools:    entity.DefaultToolDefinitions(),
	}, func(d *llm.Delta) error {
		if d.Content != "" {
			content.WriteString(d.Content)
		}
		if d.ToolCall != nil {
			toolDeltas = append(toolDeltas, d.ToolCall)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}

	if content.String() != "Hello" {
		t.Errorf("content = %q", content.String())
	}
	if len(toolDeltas) != 2 {
		t.Fatalf("got %d tool deltas, want 2", len(toolDeltas))
	}
	first := toolDeltas[0]
	if first.ID != "c1" || first.Name != "fetch_github_repo_data" || first.Index == nil || *first.Index != 0 {
		t.Errorf("first delta = %+v", first)
	}
	second := toolDeltas[1]
	if second.ID != "" || second.Arguments != `{"owner":"golang"}` {
		t.Errorf("second delta = %+v", second)
	}
}

// A turn can also arrive as one complete message chunk instead of deltas.
func TestStreamChatCompleteMessageChunk(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseBody(
			`{"choices":[{"message":{"content":"On it.","tool_calls":[{"id":"c1","function":{"name":"fetch_github_repo_data","arguments":"{\"owner\":\"golang\",\"repo\":\"go\"}"}}]},"finish_reason":"tool_calls"}]}`,
		))
	})

	var content strings.Builder
	var toolDeltas []*llm.ToolCallDelta
	err := client.StreamChat(context.Background(), &llm.ChatRequest{
		Messages: []*entity.Message{entity.NewUserMessage("hi")},
		Tools:    entity.DefaultToolDefinitions(),
	}, func(d *llm.Delta) error {
		if d.Content != "" {
			content.WriteString(d.Content)
		}
		if d.ToolCall != nil {
			toolDeltas = append(toolDeltas, d.ToolCall)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}

	if content.String() != "On it." {
		t.Errorf("content = %q", content.String())
	}
	if len(toolDeltas) != 1 {
		t.Fatalf("got %d tool deltas, want 1", len(toolDeltas))
	}
	d := toolDeltas[0]
	if d.ID != "c1" || d.Name != "fetch_github_repo_data" {
		t.Errorf("delta = %+v", d)
	}
	if d.Arguments != `{"owner":"golang","repo":"go"}` {
		t.Errorf("arguments = %q", d.Arguments)
	}
	if d.Index != nil {
		t.Errorf("index = %v, want nil for a whole-unit call", *d.Index)
	}
}

func TestStreamChatSendsToolSchema(t *testing.T) {
	var gotBody string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseBody(`{"choices":[{"delta":{"content":"ok"}}]}`))
	})

	err := client.StreamChat(context.Background(), &llm.ChatRequest{
		Messages: []*entity.Message{entity.NewUserMessage("hi")},
		Tools:    entity.DefaultToolDefinitions(),
	}, func(*llm.Delta) error { return nil })
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}

	for _, want := range []string{`"tool_choice":"auto"`, `"fetch_github_repo_data"`, `"take_repo_screenshot"`, `"stream":true`} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("request body missing %s", want)
		}
	}
}

func TestStreamChatAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited","type":"rate_limit_error"}}`)
	})

	err := client.StreamChat(context.Background(), &llm.ChatRequest{
		Messages: []*entity.Message{entity.NewUserMessage("hi")},
	}, func(*llm.Delta) error { return nil })

	apiErr, ok := err.(APIError)
	if !ok {
		t.Fatalf("err = %v (%T), want APIError", err, err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Message != "rate limited" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestAzureEndpointAndHeader(t *testing.T) {
	var gotPath, gotQuery, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHeader = r.Header.Get("api-key")
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseBody(`{"choices":[{"delta":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	client, err := New(&Config{
		APIKey:     "azure-key",
		BaseURL:    srv.URL,
		Azure:      true,
		Deployment: "gpt-4o-mini-deploy",
		APIVersion: "2024-08-01-preview",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.Name() != "azure-openai" {
		t.Errorf("Name() = %s", client.Name())
	}

	err = client.StreamChat(context.Background(), &llm.ChatRequest{
		Messages: []*entity.Message{entity.NewUserMessage("hi")},
	}, func(*llm.Delta) error { return nil })
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}

	if gotPath != "/openai/deployments/gpt-4o-mini-deploy/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.Contains(gotQuery, "api-version=2024-08-01-preview") {
		t.Errorf("query = %q", gotQuery)
	}
	if gotHeader != "azure-key" {
		t.Errorf("api-key header = %q", gotHeader)
	}
}

func TestConfigComplete(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"missing key", Config{}, true},
		{"plain defaults", Config{APIKey: "k"}, false},
		{"azure without endpoint", Config{APIKey: "k", Azure: true}, true},
		{"azure without version", Config{APIKey: "k", Azure: true, BaseURL: "https://x.openai.azure.com"}, true},
		{"azure complete", Config{APIKey: "k", Azure: true, BaseURL: "https://x.openai.azure.com", APIVersion: "2024-08-01-preview"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Complete()
			if (err != nil) != tt.wantErr {
				t.Errorf("Complete() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
