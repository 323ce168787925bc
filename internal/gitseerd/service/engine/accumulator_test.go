package engine

import (
	"fmt"
	"testing"

	"github.com/morgatz/gitseer/internal/gitseerd/service/llm"
)

func intp(i int) *int { return &i }

func callDelta(index *int, id, name, args string) *llm.Delta {
	return &llm.Delta{ToolCall: &llm.ToolCallDelta{Index: index, ID: id, Name: name, Arguments: args}}
}

func TestAccumulatorContent(t *testing.T) {
	acc := NewAccumulator()
	for _, s := range []string{"Hello", ", ", "world"} {
		acc.Feed(&llm.Delta{Content: s})
	}
	if got := acc.Content(); got != "Hello, world" {
		t.Errorf("Content() = %q, want %q", got, "Hello, world")
	}
}

func TestAccumulatorIDKeyedFragments(t *testing.T) {
	acc := NewAccumulator()
	acc.Feed(callDelta(intp(0), "call_1", "fetch_github_repo_data", ""))
	acc.Feed(callDelta(intp(0), "", "", `{"owner":"tor`))
	acc.Feed(callDelta(intp(0), "", "", `valds","repo":"linux"}`))

	calls := acc.CompletedCalls()
	if len(calls) != 1 {
		t.Fatalf("got %d completed calls, want 1", len(calls))
	}
	c := calls[0]
	if c.ID != "call_1" || c.Name != "fetch_github_repo_data" {
		t.Errorf("got id=%q name=%q", c.ID, c.Name)
	}
	if c.Arguments != `{"owner":"torvalds","repo":"linux"}` {
		t.Errorf("arguments = %q", c.Arguments)
	}
}

// Index-only fragments arriving before the ID must be parked and then
// prepended once the ID shows up for that index.
func TestAccumulatorIndexBeforeID(t *testing.T) {
	acc := NewAccumulator()
	acc.Feed(callDelta(intp(0), "", "f", ""))
	acc.Feed(callDelta(intp(0), "", "", `{"a":`))
	acc.Feed(callDelta(intp(0), "c1", "", ""))
	acc.Feed(callDelta(intp(0), "c1", "", `1}`))

	calls := acc.CompletedCalls()
	if len(calls) != 1 {
		t.Fatalf("got %d completed calls, want 1", len(calls))
	}
	c := calls[0]
	if c.ID != "c1" {
		t.Errorf("ID = %q, want c1", c.ID)
	}
	if c.Name != "f" {
		t.Errorf("Name = %q, want f", c.Name)
	}
	if c.Arguments != `{"a":1}` {
		t.Errorf("Arguments = %q, want {\"a\":1}", c.Arguments)
	}
}

func TestAccumulatorInterleavedCalls(t *testing.T) {
	acc := NewAccumulator()
	acc.Feed(callDelta(intp(0), "c1", "alpha", ""))
	acc.Feed(callDelta(intp(1), "c2", "beta", ""))
	acc.Feed(callDelta(intp(0), "", "", `{"x":`))
	acc.Feed(callDelta(intp(1), "", "", `{"y":`))
	acc.Feed(callDelta(intp(0), "", "", `1}`))
	acc.Feed(callDelta(intp(1), "", "", `2}`))

	calls := acc.CompletedCalls()
	if len(calls) != 2 {
		t.Fatalf("got %d completed calls, want 2", len(calls))
	}
	if calls[0].ID != "c1" || calls[1].ID != "c2" {
		t.Errorf("order = [%s %s], want [c1 c2]", calls[0].ID, calls[1].ID)
	}
	if calls[0].Arguments != `{"x":1}` || calls[1].Arguments != `{"y":2}` {
		t.Errorf("arguments = [%q %q]", calls[0].Arguments, calls[1].Arguments)
	}
}

func TestAccumulatorNameOverwrite(t *testing.T) {
	acc := NewAccumulator()
	acc.Feed(callDelta(intp(0), "c1", "old_name", ""))
	acc.Feed(callDelta(intp(0), "", "new_name", `{}`))

	calls := acc.CompletedCalls()
	if len(calls) != 1 {
		t.Fatalf("got %d completed calls, want 1", len(calls))
	}
	if calls[0].Name != "new_name" {
		t.Errorf("Name = %q, want new_name", calls[0].Name)
	}
}

func TestAccumulatorDiscardsIncomplete(t *testing.T) {
	tests := []struct {
		name   string
		deltas []*llm.Delta
	}{
		{
			name:   "no name",
			deltas: []*llm.Delta{callDelta(intp(0), "c1", "", `{"a":1}`)},
		},
		{
			name:   "empty arguments",
			deltas: []*llm.Delta{callDelta(intp(0), "c1", "f", "")},
		},
		{
			name: "truncated arguments",
			deltas: []*llm.Delta{
				callDelta(intp(0), "c1", "f", `{"a":`),
			},
		},
		{
			name: "never resolved to an id",
			deltas: []*llm.Delta{
				callDelta(intp(3), "", "f", `{"a":1}`),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := NewAccumulator()
			for _, d := range tt.deltas {
				acc.Feed(d)
			}
			if calls := acc.CompletedCalls(); len(calls) != 0 {
				t.Errorf("got %d completed calls, want 0", len(calls))
			}
		})
	}
}

func TestAccumulatorDropsUnkeyedFragment(t *testing.T) {
	acc := NewAccumulator()
	acc.Feed(callDelta(nil, "", "", `{"lost":true}`))
	if calls := acc.CompletedCalls(); len(calls) != 0 {
		t.Errorf("got %d completed calls, want 0", len(calls))
	}
	if acc.DroppedFragments() != 1 {
		t.Errorf("DroppedFragments() = %d, want 1", acc.DroppedFragments())
	}
}

// The reassembled call must not depend on how the provider slices the
// arguments across fragments.
func TestAccumulatorFragmentationInvariance(t *testing.T) {
	const args = `{"owner":"golang","repo":"go","depth":3}`
	for _, chunk := range []int{1, 3, 7, len(args)} {
		t.Run(fmt.Sprintf("chunk=%d", chunk), func(t *testing.T) {
			acc := NewAccumulator()
			acc.Feed(callDelta(intp(0), "c1", "fetch_github_repo_data", ""))
			for i := 0; i < len(args); i += chunk {
				end := i + chunk
				if end > len(args) {
					end = len(args)
				}
				acc.Feed(callDelta(intp(0), "", "", args[i:end]))
			}
			calls := acc.CompletedCalls()
			if len(calls) != 1 {
				t.Fatalf("got %d completed calls, want 1", len(calls))
			}
			if calls[0].Arguments != args {
				t.Errorf("Arguments = %q, want %q", calls[0].Arguments, args)
			}
		})
	}
}
