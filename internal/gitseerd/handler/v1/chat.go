package v1

import (
	"context"
	"io"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/morgatz/gitseer/internal/gitseerd/service/engine"
	"github.com/morgatz/gitseer/internal/gitseerd/service/engine/entity"
	"github.com/morgatz/gitseer/internal/pkg/core"
	"github.com/morgatz/gitseer/pkg/errorx"
	"github.com/morgatz/gitseer/pkg/logger"
	"github.com/morgatz/gitseer/pkg/utils/json"
)

// ChatEngine is the slice of the orchestration engine the handler needs.
type ChatEngine interface {
	Chat(ctx context.Context, messages []*entity.Message) *engine.StreamReader
}

// ChatHandler handles POST /v1/chat: it runs one engine invocation and
// relays the event stream to the client as SSE data frames, one JSON
// object per frame. The engine guarantees the stream ends with a single
// terminal event (done or error), so the handler just forwards until EOF.
type ChatHandler struct {
	engine ChatEngine
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(eng ChatEngine) *ChatHandler {
	return &ChatHandler{engine: eng}
}

// Handle is the main entry point for POST /v1/chat.
func (h *ChatHandler) Handle(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind chat request"), nil)
		return
	}

	if len(req.Messages) == 0 {
		core.WriteResponse(c, errorx.WithCode(ErrMessagesEmpty, "messages array is required and must not be empty"), nil)
		return
	}

	messages, err := toEntityMessages(req.Messages)
	if err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	streamID := "chat-" + uuid.New().String()[:8]
	logger.InfoX("chat", "stream %s starting with %d messages", streamID, len(messages))

	ctx := c.Request.Context()
	sr := h.engine.Chat(ctx, messages)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	w := c.Writer
	for {
		event, err := sr.Recv(ctx)
		if err != nil {
			if err == io.EOF {
				return
			}
			// Recv only fails on context cancellation, i.e. the client
			// disconnected mid-stream.
			logger.Warn("[Chat] stream %s recv error (code=%d): %v", streamID, ErrStreamRecv, err)
			return
		}

		data, err := json.MarshalString(event)
		if err != nil {
			logger.Warn("[Chat] stream %s: marshal event error: %v", streamID, err)
			continue
		}
		if err := sse.Encode(w, sse.Event{Data: data}); err != nil {
			return
		}
		w.Flush()
	}
}

// toEntityMessages converts caller messages into the engine's domain model.
// Only the three caller-facing roles are accepted; tool messages are
// fabricated by the engine itself.
func toEntityMessages(in []ChatMessage) ([]*entity.Message, error) {
	out := make([]*entity.Message, 0, len(in))
	for i, m := range in {
		switch m.Role {
		case string(entity.RoleSystem):
			out = append(out, entity.NewSystemMessage(m.Content))
		case string(entity.RoleUser):
			out = append(out, entity.NewUserMessage(m.Content))
		case string(entity.RoleAssistant):
			out = append(out, entity.NewAssistantMessage(m.Content, nil))
		default:
			return nil, errorx.WithCode(ErrBadRole, "message %d has unsupported role %q", i, m.Role)
		}
	}
	return out, nil
}
