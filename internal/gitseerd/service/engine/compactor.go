package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/morgatz/gitseer/internal/gitseerd/service/engine/entity"
	"github.com/morgatz/gitseer/pkg/logger"
	"github.com/morgatz/gitseer/pkg/utils/json"
)

// Compactor shrinks what the model sees without touching what the caller
// sees. It owns two independent jobs:
//
//   - ProjectResult: turn a full tool result into the compact string stored
//     as the tool message content. Bulk collections and binary blobs are
//     replaced with count/availability markers so the model never re-reads
//     data the caller already has in full.
//
//   - TruncateHistory: bound the message list re-sent to the model each
//     round, dropping whole tool-call groups from the middle so an
//     assistant message and its tool results are never separated.
//
// The full ToolResult payloads are never modified; only copies sent to the
// model are compacted.
type Compactor struct {
	config CompactorConfig
}

// CompactorConfig holds tunable parameters for context compaction.
type CompactorConfig struct {
	// KeepRecentMessages caps how many messages survive history truncation.
	// Default: 10.
	KeepRecentMessages int

	// MaxListItems caps list lengths inside projected tool results.
	// Default: 20.
	MaxListItems int

	// MaxStringChars caps string lengths inside projected tool results.
	// Default: 500.
	MaxStringChars int

	// MaxSerializedChars is the hard ceiling on a projected result's
	// serialized form. Default: 50000.
	MaxSerializedChars int
}

// DefaultCompactorConfig returns the default compaction configuration.
func DefaultCompactorConfig() CompactorConfig {
	return CompactorConfig{
		KeepRecentMessages: 10,
		MaxListItems:       20,
		MaxStringChars:     500,
		MaxSerializedChars: 50000,
	}
}

// NewCompactor creates a Compactor, filling unset config fields with
// defaults.
func NewCompactor(config CompactorConfig) *Compactor {
	if config.KeepRecentMessages <= 0 {
		config.KeepRecentMessages = 10
	}
	if config.MaxListItems <= 0 {
		config.MaxListItems = 20
	}
	if config.MaxStringChars <= 0 {
		config.MaxStringChars = 500
	}
	if config.MaxSerializedChars <= 0 {
		config.MaxSerializedChars = 50000
	}
	return &Compactor{config: config}
}

// Keys holding bulk collections the caller renders itself. The model gets a
// count plus an instruction not to restate the data.
var bulkCollectionKeys = []string{"commits", "issues", "pullRequests"}

// Base64 image prefixes (PNG, JPEG, GIF, data URL).
var base64Prefixes = []string{"iVBORw0KGgo", "/9j/", "R0lGOD", "data:image"}

// ProjectResult produces the model-facing string form of a tool result.
// The result itself is not modified.
func (c *Compactor) ProjectResult(result *entity.ToolResult) string {
	if result.Error != "" {
		s, _ := json.MarshalString(map[string]interface{}{"error": result.Error})
		return s
	}

	projected := make(map[string]interface{}, len(result.Payload))
	for k, v := range result.Payload {
		projected[k] = v
	}

	for _, key := range bulkCollectionKeys {
		if items, ok := projected[key].([]interface{}); ok && len(items) > 0 {
			projected[key] = map[string]interface{}{
				"_count": len(items),
				"_instruction": fmt.Sprintf("STOP. DO NOT mention, summarize, list, or discuss %s. "+
					"They are displayed in the UI table. The user can see them. "+
					"Only acknowledge availability if directly asked, but provide NO details.", key),
			}
			logger.Debug("[Compactor] replaced %d %s with count marker in model context", len(items), key)
		}
	}

	if shot, ok := projected["screenshot"].(string); ok && shot != "" {
		projected["screenshot"] = map[string]interface{}{
			"_available": true,
			"_instruction": "STOP. DO NOT mention, describe, or discuss the screenshot. " +
				"The screenshot is displayed in the UI gallery. The user can see it. " +
				"Do NOT include any links, data URLs, or references to the screenshot in your response. " +
				"Only acknowledge that a screenshot was taken if directly asked, but provide NO details or links.",
		}
		logger.Debug("[Compactor] replaced screenshot with availability marker in model context")
	}

	shrunk := c.shrinkValue(projected)

	content, err := json.MarshalString(shrunk)
	if err != nil {
		logger.Warn("[Compactor] failed to serialize projected result for call %s: %v", result.ToolCallID, err)
		content = fmt.Sprintf(`{"error":"result serialization failed: %v"}`, err)
	}
	if len(content) > c.config.MaxSerializedChars {
		logger.Debug("[Compactor] projected result too large (%d chars), cutting to %d",
			len(content), c.config.MaxSerializedChars)
		content = cutAtRune(content, c.config.MaxSerializedChars) + `..."[truncated]"`
	}
	return content
}

// shrinkValue recursively bounds lists and strings inside a projected
// result. Input values are never mutated; containers are rebuilt.
func (c *Compactor) shrinkValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			// Image-bearing keys get a placeholder outright once they are
			// too big to plausibly be a URL.
			if s, ok := item.(string); ok && (k == "screenshot" || k == "image") && len(s) > 1000 {
				out[k] = fmt.Sprintf("[%s data truncated - %d chars]", capitalize(k), len(s))
				continue
			}
			out[k] = c.shrinkValue(item)
		}
		return out
	case []interface{}:
		items := val
		if len(items) > c.config.MaxListItems {
			logger.Debug("[Compactor] truncating list from %d to %d items", len(items), c.config.MaxListItems)
			items = items[:c.config.MaxListItems]
		}
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = c.shrinkValue(item)
		}
		return out
	case string:
		if len(val) <= c.config.MaxStringChars {
			return val
		}
		for _, prefix := range base64Prefixes {
			if strings.HasPrefix(val, prefix) {
				return fmt.Sprintf("[Base64 image data truncated - %d chars]", len(val))
			}
		}
		return cutAtRune(val, c.config.MaxStringChars) + "... [truncated]"
	default:
		return v
	}
}

// TruncateHistory bounds the conversation re-sent to the model. Messages
// are partitioned into groups, where a tool-invoking assistant message and
// the tool messages answering it form one indivisible group and every other
// message is a group of its own. The first group is always kept; after
// that, the most recent groups are kept newest-first while they fit in the
// budget, and a group that does not fit whole is dropped whole.
func (c *Compactor) TruncateHistory(messages []*entity.Message) []*entity.Message {
	if len(messages) <= c.config.KeepRecentMessages {
		return messages
	}

	groups := groupMessages(messages)

	truncated := make([]*entity.Message, 0, c.config.KeepRecentMessages)
	truncated = append(truncated, groups[0]...)

	remaining := c.config.KeepRecentMessages - len(truncated)
	var recent [][]*entity.Message
	if remaining > 0 {
		kept := 0
		for i := len(groups) - 1; i >= 1; i-- {
			if kept+len(groups[i]) > remaining {
				break
			}
			recent = append([][]*entity.Message{groups[i]}, recent...)
			kept += len(groups[i])
		}
	}
	for _, group := range recent {
		truncated = append(truncated, group...)
	}

	logger.Debug("[Compactor] truncated history from %d to %d messages (%d groups)",
		len(messages), len(truncated), len(groups))
	return truncated
}

// cutAtRune cuts s to at most limit bytes without splitting a rune, so the
// truncated string stays valid UTF-8.
func cutAtRune(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// groupMessages partitions messages into truncation groups in order.
func groupMessages(messages []*entity.Message) [][]*entity.Message {
	var groups [][]*entity.Message
	var current []*entity.Message

	for _, msg := range messages {
		switch {
		case msg.InvokesTools():
			if len(current) > 0 {
				groups = append(groups, current)
			}
			current = []*entity.Message{msg}
		case msg.Role == entity.RoleTool && len(current) > 0:
			current = append(current, msg)
		default:
			if len(current) > 0 {
				groups = append(groups, current)
				current = nil
			}
			groups = append(groups, []*entity.Message{msg})
		}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// Sanitize returns a copy of messages safe to send to a provider: every
// tool_calls entry without an ID and a name is removed, and an assistant
// message left with no valid entries loses the field entirely. Providers
// hard-reject requests that violate this.
func (c *Compactor) Sanitize(messages []*entity.Message) []*entity.Message {
	sanitized := make([]*entity.Message, len(messages))
	for i, msg := range messages {
		if len(msg.ToolCalls) == 0 {
			sanitized[i] = msg
			continue
		}
		cp := msg.Clone()
		valid := cp.ToolCalls[:0]
		for _, tc := range cp.ToolCalls {
			if tc.Valid() {
				valid = append(valid, tc)
			}
		}
		if len(valid) == 0 {
			cp.ToolCalls = nil
		} else {
			cp.ToolCalls = valid
		}
		sanitized[i] = cp
	}
	return sanitized
}
