package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// EngineOptions tunes the orchestration loop and the context compactor.
type EngineOptions struct {
	// MaxRounds caps model turns per chat invocation.
	MaxRounds int `json:"max_rounds" mapstructure:"max_rounds"`

	// EventBuffer is the capacity of the per-invocation event channel.
	EventBuffer int `json:"event_buffer" mapstructure:"event_buffer"`

	// KeepRecentMessages bounds conversation history by message count.
	KeepRecentMessages int `json:"keep_recent_messages" mapstructure:"keep_recent_messages"`

	// MaxListItems caps list lengths inside compacted tool results.
	MaxListItems int `json:"max_list_items" mapstructure:"max_list_items"`

	// MaxStringChars caps string lengths inside compacted tool results.
	MaxStringChars int `json:"max_string_chars" mapstructure:"max_string_chars"`

	// MaxSerializedChars is the hard ceiling on a serialized tool result.
	MaxSerializedChars int `json:"max_serialized_chars" mapstructure:"max_serialized_chars"`
}

// NewEngineOptions creates an EngineOptions with defaults.
func NewEngineOptions() *EngineOptions {
	return &EngineOptions{
		MaxRounds:          10,
		EventBuffer:        64,
		KeepRecentMessages: 10,
		MaxListItems:       20,
		MaxStringChars:     500,
		MaxSerializedChars: 50000,
	}
}

// Validate checks the EngineOptions for correctness.
func (o *EngineOptions) Validate() []error {
	var errs []error
	checks := []struct {
		name  string
		value int
	}{
		{"max_rounds", o.MaxRounds},
		{"event_buffer", o.EventBuffer},
		{"keep_recent_messages", o.KeepRecentMessages},
		{"max_list_items", o.MaxListItems},
		{"max_string_chars", o.MaxStringChars},
		{"max_serialized_chars", o.MaxSerializedChars},
	}
	for _, c := range checks {
		if c.value <= 0 {
			errs = append(errs, fmt.Errorf("engine: %s must be positive, got %d", c.name, c.value))
		}
	}
	return errs
}

// AddFlags adds the engine flags to the given flag set.
func (o *EngineOptions) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.MaxRounds, "engine.max-rounds", o.MaxRounds, "Model turn cap per chat invocation.")
	fs.IntVar(&o.EventBuffer, "engine.event-buffer", o.EventBuffer, "Event channel capacity per invocation.")
	fs.IntVar(&o.KeepRecentMessages, "engine.keep-recent-messages", o.KeepRecentMessages, "History message budget.")
	fs.IntVar(&o.MaxListItems, "engine.max-list-items", o.MaxListItems, "List length cap inside compacted results.")
	fs.IntVar(&o.MaxStringChars, "engine.max-string-chars", o.MaxStringChars, "String length cap inside compacted results.")
	fs.IntVar(&o.MaxSerializedChars, "engine.max-serialized-chars", o.MaxSerializedChars, "Hard ceiling on a serialized result.")
}
