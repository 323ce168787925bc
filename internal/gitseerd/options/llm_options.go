package options

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

const (
	// ProviderOpenAI selects the standard OpenAI Chat Completions endpoint.
	ProviderOpenAI = "openai"
	// ProviderAzure selects the Azure OpenAI deployment endpoint layout.
	ProviderAzure = "azure"
)

// LLMOptions configures the chat completion backend.
type LLMOptions struct {
	// Provider is "openai" or "azure".
	Provider string `json:"provider" mapstructure:"provider"`

	// APIKey authenticates against the provider. Falls back to
	// OPENAI_API_KEY (or AZURE_OPENAI_API_KEY for azure) when empty.
	APIKey string `json:"api_key" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint. Required for azure.
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// Model is the model identifier sent with each request.
	Model string `json:"model" mapstructure:"model"`

	// Deployment is the Azure deployment name. Defaults to Model.
	Deployment string `json:"deployment" mapstructure:"deployment"`

	// APIVersion is the Azure api-version query parameter.
	APIVersion string `json:"api_version" mapstructure:"api_version"`

	// Temperature is the sampling temperature.
	Temperature float32 `json:"temperature" mapstructure:"temperature"`

	// MaxTokens caps completion length. 0 leaves it to the provider.
	MaxTokens int `json:"max_tokens" mapstructure:"max_tokens"`
}

// NewLLMOptions creates an LLMOptions with defaults.
func NewLLMOptions() *LLMOptions {
	return &LLMOptions{
		Provider:    ProviderOpenAI,
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
	}
}

// Complete fills the API key from the environment when unset.
func (o *LLMOptions) Complete() {
	if o.APIKey != "" {
		return
	}
	if o.Provider == ProviderAzure {
		o.APIKey = os.Getenv("AZURE_OPENAI_API_KEY")
		if o.APIKey != "" {
			return
		}
	}
	o.APIKey = os.Getenv("OPENAI_API_KEY")
}

// Validate checks the LLMOptions for correctness.
func (o *LLMOptions) Validate() []error {
	var errs []error
	switch o.Provider {
	case ProviderOpenAI:
	case ProviderAzure:
		if o.BaseURL == "" {
			errs = append(errs, fmt.Errorf("llm: base_url is required for the azure provider"))
		}
		if o.APIVersion == "" {
			errs = append(errs, fmt.Errorf("llm: api_version is required for the azure provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("llm: unknown provider %q, must be %q or %q", o.Provider, ProviderOpenAI, ProviderAzure))
	}
	if o.APIKey == "" {
		errs = append(errs, fmt.Errorf("llm: api_key is required (set it or export OPENAI_API_KEY)"))
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm: temperature %v must be between 0 and 2", o.Temperature))
	}
	if o.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("llm: max_tokens must not be negative"))
	}
	return errs
}

// AddFlags adds the llm flags to the given flag set.
func (o *LLMOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Provider, "llm.provider", o.Provider, "Chat backend: 'openai' or 'azure'.")
	fs.StringVar(&o.APIKey, "llm.api-key", o.APIKey, "Provider API key (falls back to OPENAI_API_KEY).")
	fs.StringVar(&o.BaseURL, "llm.base-url", o.BaseURL, "Provider endpoint override (required for azure).")
	fs.StringVar(&o.Model, "llm.model", o.Model, "Model identifier.")
	fs.StringVar(&o.Deployment, "llm.deployment", o.Deployment, "Azure deployment name (defaults to the model).")
	fs.StringVar(&o.APIVersion, "llm.api-version", o.APIVersion, "Azure api-version query parameter.")
	fs.Float32Var(&o.Temperature, "llm.temperature", o.Temperature, "Sampling temperature.")
	fs.IntVar(&o.MaxTokens, "llm.max-tokens", o.MaxTokens, "Completion token cap (0 = provider default).")
}
