package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/morgatz/gitseer/internal/gitseerd/service/engine/entity"
	"github.com/morgatz/gitseer/internal/gitseerd/service/llm"
	"github.com/morgatz/gitseer/pkg/logger"
	"github.com/morgatz/gitseer/pkg/utils/json"
	"github.com/morgatz/gitseer/pkg/utils/safego"
)

// Engine drives the streaming tool-orchestration loop:
//
//  1. Stream one model turn, forwarding text deltas to the caller while the
//     accumulator reassembles tool calls.
//  2. If the turn requested tools, dispatch all of them concurrently,
//     emit each result, fold the compacted results back into the
//     conversation, and go to 1.
//  3. If the turn requested nothing, the invocation is complete.
//
// The loop is bounded by MaxRounds so a model that keeps requesting tools
// cannot spin forever. Every invocation ends with exactly one terminal
// event, done or error, regardless of how it ends.
type Engine struct {
	provider  llm.StreamProvider
	gateway   Gateway
	compactor *Compactor
	config    EngineConfig
}

// EngineConfig holds tunable parameters for the orchestration loop.
type EngineConfig struct {
	// MaxRounds caps model turns per invocation. Default: 10.
	MaxRounds int

	// EventBuffer is the event channel capacity. Default: 64.
	EventBuffer int
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxRounds:   10,
		EventBuffer: 64,
	}
}

// NewEngine creates an Engine, filling unset config fields with defaults.
func NewEngine(provider llm.StreamProvider, gateway Gateway, compactor *Compactor, config EngineConfig) *Engine {
	if config.MaxRounds <= 0 {
		config.MaxRounds = 10
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = 64
	}
	return &Engine{
		provider:  provider,
		gateway:   gateway,
		compactor: compactor,
		config:    config,
	}
}

// Chat starts one chat invocation and returns the event stream. The loop
// runs in a background goroutine; canceling ctx tears it down. The stream
// always carries exactly one terminal event before io.EOF.
func (e *Engine) Chat(ctx context.Context, messages []*entity.Message) *StreamReader {
	reader, writer := Pipe(e.config.EventBuffer)
	safego.Go(ctx, func() {
		defer writer.Close()
		e.run(ctx, messages, writer)
	})
	return reader
}

func (e *Engine) run(ctx context.Context, messages []*entity.Message, w *StreamWriter) {
	current := e.compactor.TruncateHistory(messages)
	tools := e.gateway.Definitions()

	var allCalls []*entity.ToolCall
	var allResults []*entity.ToolResult

	for round := 1; round <= e.config.MaxRounds; round++ {
		acc := NewAccumulator()
		req := &llm.ChatRequest{
			Messages: e.compactor.Sanitize(current),
			Tools:    tools,
		}

		err := e.provider.StreamChat(ctx, req, func(d *llm.Delta) error {
			acc.Feed(d)
			if d.Content != "" {
				return w.Send(ctx, &entity.ChatEvent{Type: entity.EventContent, Content: d.Content})
			}
			return nil
		})
		if err != nil {
			logger.Error("[Engine] model turn %d failed: %v", round, err)
			e.sendError(ctx, w, err)
			return
		}

		calls := acc.CompletedCalls()
		current = append(current, entity.NewAssistantMessage(acc.Content(), calls))

		if len(calls) == 0 {
			e.sendDone(ctx, w, allCalls, allResults)
			return
		}

		logger.InfoX("engine", "round %d: dispatching %d tool calls", round, len(calls))
		for _, call := range calls {
			if err := w.Send(ctx, &entity.ChatEvent{Type: entity.EventToolCall, ToolCall: call}); err != nil {
				return
			}
		}

		results := e.dispatch(ctx, calls)
		for _, res := range results {
			if err := w.Send(ctx, &entity.ChatEvent{Type: entity.EventToolResult, Result: res}); err != nil {
				return
			}
			current = append(current, entity.NewToolMessage(res.ToolCallID, res.Name, e.compactor.ProjectResult(res)))
		}
		allCalls = append(allCalls, calls...)
		allResults = append(allResults, results...)

		// Re-bound the conversation after folding this round's results in,
		// so multi-round tool use cannot grow the model context without
		// limit.
		current = e.compactor.TruncateHistory(current)
	}

	logger.Warn("[Engine] invocation hit the %d-round cap, ending turn", e.config.MaxRounds)
	e.sendDone(ctx, w, allCalls, allResults)
}

// dispatch executes all calls concurrently and returns one result per call,
// in call order. A failed or panicking call becomes an error result; it
// never takes its siblings down with it.
func (e *Engine) dispatch(ctx context.Context, calls []*entity.ToolCall) []*entity.ToolResult {
	results := make([]*entity.ToolResult, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call *entity.ToolCall) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("[Engine] tool %s panicked: %v", call.Name, r)
					results[i] = entity.NewErrorResult(call.ID, call.Name, fmt.Errorf("tool panicked: %v", r))
				}
			}()
			results[i] = e.callTool(ctx, call)
		}(i, call)
	}
	wg.Wait()
	return results
}

func (e *Engine) callTool(ctx context.Context, call *entity.ToolCall) *entity.ToolResult {
	var args map[string]interface{}
	if err := json.UnmarshalString(call.Arguments, &args); err != nil {
		// The accumulator only releases calls with parsing arguments, so
		// this is a programming error rather than model misbehavior.
		return entity.NewErrorResult(call.ID, call.Name, fmt.Errorf("arguments do not parse: %w", err))
	}

	payload, err := e.gateway.CallTool(ctx, call.Name, args)
	if err != nil {
		logger.Warn("[Engine] tool %s (call %s) failed: %v", call.Name, call.ID, err)
		return entity.NewErrorResult(call.ID, call.Name, err)
	}
	return &entity.ToolResult{
		ToolCallID: call.ID,
		Name:       call.Name,
		Payload:    payload,
	}
}

func (e *Engine) sendDone(ctx context.Context, w *StreamWriter, calls []*entity.ToolCall, results []*entity.ToolResult) {
	_ = w.Send(ctx, &entity.ChatEvent{
		Type:        entity.EventDone,
		ToolCalls:   calls,
		ToolResults: results,
	})
}

func (e *Engine) sendError(ctx context.Context, w *StreamWriter, err error) {
	_ = w.Send(ctx, &entity.ChatEvent{
		Type:  entity.EventError,
		Error: err.Error(),
	})
}
