package options

import (
	"github.com/spf13/pflag"

	"github.com/morgatz/gitseer/pkg/utils/json"
)

// Options is the full set of gitseerd run options, grouped by subsystem.
type Options struct {
	ServingOptions *ServingOptions `json:"serving" mapstructure:"serving"`
	LLMOptions     *LLMOptions     `json:"llm"     mapstructure:"llm"`
	EngineOptions  *EngineOptions  `json:"engine"  mapstructure:"engine"`
	MCPOptions     *MCPOptions     `json:"mcp"     mapstructure:"mcp"`
}

// NewOptions creates an Options with all groups at their defaults.
func NewOptions() *Options {
	return &Options{
		ServingOptions: NewServingOptions(),
		LLMOptions:     NewLLMOptions(),
		EngineOptions:  NewEngineOptions(),
		MCPOptions:     NewMCPOptions(),
	}
}

// AddFlags registers every option group on the given flag set.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.ServingOptions.AddFlags(fs)
	o.LLMOptions.AddFlags(fs)
	o.EngineOptions.AddFlags(fs)
	o.MCPOptions.AddFlags(fs)
}

// Complete fills derivable defaults (environment fallbacks).
func (o *Options) Complete() error {
	o.LLMOptions.Complete()
	return nil
}

// Validate checks all option groups and collects every error.
func (o *Options) Validate() []error {
	var errs []error
	errs = append(errs, o.ServingOptions.Validate()...)
	errs = append(errs, o.LLMOptions.Validate()...)
	errs = append(errs, o.EngineOptions.Validate()...)
	errs = append(errs, o.MCPOptions.Validate()...)
	return errs
}

func (o *Options) String() string {
	data, _ := json.Marshal(o)

	return string(data)
}
