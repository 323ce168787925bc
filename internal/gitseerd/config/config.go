package config

import (
	"github.com/morgatz/gitseer/internal/gitseerd/options"
)

// Config is the running configuration structure of the gitseerd service.
type Config struct {
	*options.Options
}

// CreateConfigFromOptions creates a running configuration instance based
// on the given options.
func CreateConfigFromOptions(opts *options.Options) (*Config, error) {
	return &Config{opts}, nil
}
