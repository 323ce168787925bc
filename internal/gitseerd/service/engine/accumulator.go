package engine

import (
	"strings"

	"github.com/morgatz/gitseer/internal/gitseerd/service/engine/entity"
	"github.com/morgatz/gitseer/internal/gitseerd/service/llm"
	"github.com/morgatz/gitseer/pkg/logger"
	"github.com/morgatz/gitseer/pkg/utils/json"
)

// Accumulator reassembles an interleaved stream of tool-call deltas into
// complete tool calls, plus the assistant's concatenated text.
//
// Identity resolution is stateful across fragments because providers key
// fragments inconsistently:
//
//  1. A fragment with an ID is merged into the call buffered under that ID
//     (creating it on first sight).
//  2. A fragment with only an index resolves through the index→ID binding
//     established by an earlier fragment, if any.
//  3. A fragment with an index that has never been bound is parked in a
//     side buffer and merged in once an ID shows up for that index. Parked
//     text is prepended: index-only fragments always precede the ID-bearing
//     fragment that resolves them.
//  4. A fragment with neither ID nor index is dropped. Data loss, not an
//     error.
//
// Feeding must happen in arrival order; later fragments may resolve
// identities earlier ones left ambiguous.
type Accumulator struct {
	calls     map[string]*entity.ToolCall
	order     []string
	indexToID map[int]string
	parked    map[int]*parkedFragments
	content   strings.Builder
	dropped   int
}

// parkedFragments buffers tool-call text that arrived before its ID.
type parkedFragments struct {
	name      string
	arguments string
}

// NewAccumulator creates an empty accumulator for one streaming turn.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		calls:     make(map[string]*entity.ToolCall),
		indexToID: make(map[int]string),
		parked:    make(map[int]*parkedFragments),
	}
}

// Feed folds one delta into the accumulator.
func (a *Accumulator) Feed(d *llm.Delta) {
	if d == nil {
		return
	}
	if d.Content != "" {
		a.content.WriteString(d.Content)
		return
	}
	tc := d.ToolCall
	if tc == nil {
		return
	}

	id := tc.ID
	if id == "" && tc.Index != nil {
		id = a.indexToID[*tc.Index]
	}

	switch {
	case id != "":
		if tc.Index != nil {
			a.indexToID[*tc.Index] = id
		}
		call, ok := a.calls[id]
		if !ok {
			call = &entity.ToolCall{ID: id}
			a.calls[id] = call
			a.order = append(a.order, id)
		}
		if tc.Name != "" {
			call.Name = tc.Name
		}
		call.Arguments += tc.Arguments

		// Merge anything parked under this index before the ID arrived.
		if tc.Index != nil {
			if buf, ok := a.parked[*tc.Index]; ok {
				call.Arguments = buf.arguments + call.Arguments
				if call.Name == "" {
					call.Name = buf.name
				}
				delete(a.parked, *tc.Index)
			}
		}

	case tc.Index != nil:
		buf, ok := a.parked[*tc.Index]
		if !ok {
			buf = &parkedFragments{}
			a.parked[*tc.Index] = buf
		}
		if tc.Name != "" {
			buf.name = tc.Name
		}
		buf.arguments += tc.Arguments

	default:
		a.dropped++
		logger.Debug("[Accumulator] dropping tool-call delta with neither id nor index")
	}
}

// Content returns the assistant text accumulated so far.
func (a *Accumulator) Content() string {
	return a.content.String()
}

// DroppedFragments returns how many unresolvable fragments were discarded.
func (a *Accumulator) DroppedFragments() int {
	return a.dropped
}

// CompletedCalls returns the calls that are safe to dispatch, in the order
// their IDs were first seen. A call is complete when it has an ID, a name,
// and non-empty arguments that parse as a JSON object; anything else is
// discarded rather than dispatched with garbage arguments.
func (a *Accumulator) CompletedCalls() []*entity.ToolCall {
	completed := make([]*entity.ToolCall, 0, len(a.order))
	for _, id := range a.order {
		call := a.calls[id]
		if call.Name == "" {
			logger.Warn("[Accumulator] discarding call %s: no tool name at end of stream", id)
			continue
		}
		if strings.TrimSpace(call.Arguments) == "" {
			logger.Warn("[Accumulator] discarding call %s (%s): empty arguments", id, call.Name)
			continue
		}
		var args map[string]interface{}
		if err := json.UnmarshalString(call.Arguments, &args); err != nil {
			logger.Warn("[Accumulator] discarding call %s (%s): arguments do not parse: %v", id, call.Name, err)
			continue
		}
		completed = append(completed, call)
	}
	return completed
}
