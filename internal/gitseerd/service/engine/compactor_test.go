package engine

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/morgatz/gitseer/internal/gitseerd/service/engine/entity"
	"github.com/morgatz/gitseer/pkg/utils/json"
)

func projectToMap(t *testing.T, c *Compactor, result *entity.ToolResult) map[string]interface{} {
	t.Helper()
	content := c.ProjectResult(result)
	var m map[string]interface{}
	if err := json.UnmarshalString(content, &m); err != nil {
		t.Fatalf("projected content does not parse: %v\ncontent: %s", err, content)
	}
	return m
}

func TestProjectResultBulkCollections(t *testing.T) {
	c := NewCompactor(DefaultCompactorConfig())

	commits := make([]interface{}, 30)
	for i := range commits {
		commits[i] = map[string]interface{}{"sha": fmt.Sprintf("abc%d", i), "message": "fix"}
	}
	result := &entity.ToolResult{
		ToolCallID: "c1",
		Name:       "fetch_github_repo_data",
		Payload: map[string]interface{}{
			"repository": map[string]interface{}{"name": "linux", "stars": float64(180000)},
			"commits":    commits,
		},
	}

	m := projectToMap(t, c, result)

	marker, ok := m["commits"].(map[string]interface{})
	if !ok {
		t.Fatalf("commits = %T, want marker object", m["commits"])
	}
	if got := marker["_count"]; got != float64(30) {
		t.Errorf("_count = %v, want 30", got)
	}
	if _, ok := marker["_instruction"].(string); !ok {
		t.Errorf("marker has no _instruction")
	}
	if repo, ok := m["repository"].(map[string]interface{}); !ok || repo["name"] != "linux" {
		t.Errorf("repository field was not preserved: %v", m["repository"])
	}

	// The original payload must be untouched.
	if list, ok := result.Payload["commits"].([]interface{}); !ok || len(list) != 30 {
		t.Errorf("original payload was mutated: %v", result.Payload["commits"])
	}
}

func TestProjectResultScreenshot(t *testing.T) {
	c := NewCompactor(DefaultCompactorConfig())
	result := &entity.ToolResult{
		ToolCallID: "c1",
		Name:       "take_repo_screenshot",
		Payload: map[string]interface{}{
			"screenshot": "iVBORw0KGgo" + strings.Repeat("A", 100000),
			"url":        "https://github.com/golang/go",
		},
	}

	m := projectToMap(t, c, result)
	marker, ok := m["screenshot"].(map[string]interface{})
	if !ok {
		t.Fatalf("screenshot = %T, want marker object", m["screenshot"])
	}
	if marker["_available"] != true {
		t.Errorf("_available = %v, want true", marker["_available"])
	}
	if m["url"] != "https://github.com/golang/go" {
		t.Errorf("url = %v", m["url"])
	}
}

func TestProjectResultBase64Placeholder(t *testing.T) {
	c := NewCompactor(DefaultCompactorConfig())
	tests := []struct {
		name  string
		value string
	}{
		{"png", "iVBORw0KGgo" + strings.Repeat("x", 600)},
		{"jpeg", "/9j/" + strings.Repeat("x", 600)},
		{"gif", "R0lGOD" + strings.Repeat("x", 600)},
		{"data url", "data:image/png;base64," + strings.Repeat("x", 600)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := projectToMap(t, c, &entity.ToolResult{
				ToolCallID: "c1",
				Name:       "t",
				Payload:    map[string]interface{}{"blob": tt.value},
			})
			s, ok := m["blob"].(string)
			if !ok || !strings.HasPrefix(s, "[Base64 image data truncated") {
				t.Errorf("blob = %v, want base64 placeholder", m["blob"])
			}
		})
	}
}

func TestProjectResultLongStringTruncated(t *testing.T) {
	c := NewCompactor(DefaultCompactorConfig())
	m := projectToMap(t, c, &entity.ToolResult{
		ToolCallID: "c1",
		Name:       "t",
		Payload:    map[string]interface{}{"readme": strings.Repeat("a", 2000)},
	})
	s := m["readme"].(string)
	if !strings.HasSuffix(s, "... [truncated]") {
		t.Errorf("long string not truncated: %q", s[:50])
	}
	if len(s) > 600 {
		t.Errorf("truncated string still %d chars", len(s))
	}
}

// Byte-based cuts must not split a multi-byte rune; the projected content
// must stay valid UTF-8.
func TestProjectResultTruncationKeepsValidUTF8(t *testing.T) {
	cfg := DefaultCompactorConfig()
	cfg.MaxStringChars = 10
	c := NewCompactor(cfg)

	// "héllo wörld..." puts a two-byte rune across the 10-byte boundary.
	m := projectToMap(t, c, &entity.ToolResult{
		ToolCallID: "c1",
		Name:       "t",
		Payload:    map[string]interface{}{"readme": strings.Repeat("héllo wörld ", 10)},
	})
	s := m["readme"].(string)
	if !utf8.ValidString(s) {
		t.Errorf("truncated string is not valid UTF-8: %q", s)
	}
	if !strings.HasSuffix(s, "... [truncated]") {
		t.Errorf("missing truncation marker: %q", s)
	}

	cfg = DefaultCompactorConfig()
	cfg.MaxSerializedChars = 100
	cfg.MaxStringChars = 10000
	c = NewCompactor(cfg)
	content := c.ProjectResult(&entity.ToolResult{
		ToolCallID: "c1",
		Name:       "t",
		Payload:    map[string]interface{}{"data": strings.Repeat("日本語テキスト", 100)},
	})
	if !utf8.ValidString(content) {
		t.Errorf("ceiling cut produced invalid UTF-8: %q", content[:40])
	}
}

func TestProjectResultSerializedCeiling(t *testing.T) {
	cfg := DefaultCompactorConfig()
	cfg.MaxSerializedChars = 200
	cfg.MaxStringChars = 10000
	c := NewCompactor(cfg)

	content := c.ProjectResult(&entity.ToolResult{
		ToolCallID: "c1",
		Name:       "t",
		Payload:    map[string]interface{}{"data": strings.Repeat("z", 5000)},
	})
	if len(content) > 200+len(`..."[truncated]"`) {
		t.Errorf("content length = %d, want <= ceiling", len(content))
	}
	if !strings.HasSuffix(content, `..."[truncated]"`) {
		t.Errorf("content missing cut marker: ...%s", content[len(content)-30:])
	}
}

func TestProjectResultError(t *testing.T) {
	c := NewCompactor(DefaultCompactorConfig())
	m := projectToMap(t, c, entity.NewErrorResult("c1", "t", fmt.Errorf("boom")))
	if m["error"] != "boom" {
		t.Errorf("error = %v, want boom", m["error"])
	}
}

// toolGroup appends one assistant-with-calls message plus n tool results.
func toolGroup(msgs []*entity.Message, id string, n int) []*entity.Message {
	calls := make([]*entity.ToolCall, n)
	for i := range calls {
		calls[i] = &entity.ToolCall{ID: fmt.Sprintf("%s-%d", id, i), Name: "t", Arguments: "{}"}
	}
	msgs = append(msgs, entity.NewAssistantMessage("", calls))
	for i := 0; i < n; i++ {
		msgs = append(msgs, entity.NewToolMessage(fmt.Sprintf("%s-%d", id, i), "t", "{}"))
	}
	return msgs
}

func TestTruncateHistoryKeepsGroupsWhole(t *testing.T) {
	msgs := []*entity.Message{entity.NewSystemMessage("sys")}
	for i := 0; i < 30; i++ {
		msgs = toolGroup(msgs, fmt.Sprintf("g%d", i), 1)
	}

	c := NewCompactor(DefaultCompactorConfig())
	got := c.TruncateHistory(msgs)

	if len(got) > 10 {
		t.Errorf("kept %d messages, want <= 10", len(got))
	}
	if got[0].Role != entity.RoleSystem {
		t.Errorf("first message role = %s, want system", got[0].Role)
	}

	// Every surviving tool message must be preceded by the assistant message
	// that requested it.
	known := map[string]bool{}
	for _, m := range got {
		for _, tc := range m.ToolCalls {
			known[tc.ID] = true
		}
		if m.Role == entity.RoleTool && !known[m.ToolCallID] {
			t.Errorf("tool message %s lost its assistant message", m.ToolCallID)
		}
	}

	// Most recent group must survive.
	last := got[len(got)-1]
	if last.Role != entity.RoleTool || last.ToolCallID != "g29-0" {
		t.Errorf("most recent group was dropped, last = %+v", last)
	}
}

func TestTruncateHistoryDropsOversizedGroupWhole(t *testing.T) {
	cfg := DefaultCompactorConfig()
	cfg.KeepRecentMessages = 5
	c := NewCompactor(cfg)

	msgs := []*entity.Message{entity.NewSystemMessage("sys")}
	msgs = toolGroup(msgs, "big", 6) // 7 messages, can never fit in 4 remaining slots
	msgs = toolGroup(msgs, "small", 1)

	got := c.TruncateHistory(msgs)
	for _, m := range got {
		if m.Role == entity.RoleTool && strings.HasPrefix(m.ToolCallID, "big") {
			t.Errorf("oversized group was split instead of dropped: %+v", m)
		}
	}
	foundSmall := false
	for _, m := range got {
		if m.Role == entity.RoleTool && m.ToolCallID == "small-0" {
			foundSmall = true
		}
	}
	if !foundSmall {
		t.Errorf("recent small group missing from %d kept messages", len(got))
	}
}

func TestTruncateHistoryUnderBudgetUntouched(t *testing.T) {
	c := NewCompactor(DefaultCompactorConfig())
	msgs := []*entity.Message{
		entity.NewSystemMessage("sys"),
		entity.NewUserMessage("hi"),
	}
	got := c.TruncateHistory(msgs)
	if len(got) != 2 {
		t.Errorf("got %d messages, want 2", len(got))
	}
}

func TestSanitizeStripsInvalidToolCalls(t *testing.T) {
	c := NewCompactor(DefaultCompactorConfig())
	msgs := []*entity.Message{
		entity.NewAssistantMessage("", []*entity.ToolCall{
			{ID: "c1", Name: "t", Arguments: "{}"},
			{ID: "", Name: "t", Arguments: "{}"},
			{ID: "c3", Name: "", Arguments: "{}"},
		}),
		entity.NewAssistantMessage("", []*entity.ToolCall{
			{ID: "", Name: "", Arguments: "{}"},
		}),
		entity.NewUserMessage("hi"),
	}

	got := c.Sanitize(msgs)

	if len(got[0].ToolCalls) != 1 || got[0].ToolCalls[0].ID != "c1" {
		t.Errorf("first message tool calls = %+v, want only c1", got[0].ToolCalls)
	}
	if got[1].ToolCalls != nil {
		t.Errorf("second message should have lost tool_calls entirely, got %+v", got[1].ToolCalls)
	}
	// Originals untouched.
	if len(msgs[0].ToolCalls) != 3 {
		t.Errorf("original message was mutated: %d tool calls", len(msgs[0].ToolCalls))
	}
}
