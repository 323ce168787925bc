package options

import (
	"fmt"
	"net"

	"github.com/spf13/pflag"
)

// ServingOptions configures the HTTP serving surface of gitseerd.
type ServingOptions struct {
	// BindAddress is the IP address the server listens on.
	BindAddress string `json:"bind_address" mapstructure:"bind_address"`

	// BindPort is the TCP port the server listens on.
	BindPort int `json:"bind_port" mapstructure:"bind_port"`

	// AuthEnabled toggles Bearer token authentication.
	AuthEnabled bool `json:"auth_enabled" mapstructure:"auth_enabled"`

	// AuthToken is the expected Bearer token. Falls back to the
	// GITSEER_GATEWAY_TOKEN environment variable when empty.
	AuthToken string `json:"auth_token" mapstructure:"auth_token"`

	// CORSOrigins lists the allowed CORS origins. "*" allows any.
	CORSOrigins []string `json:"cors_origins" mapstructure:"cors_origins"`

	// EnableProfiling mounts the pprof routes under /debug/pprof.
	EnableProfiling bool `json:"enable_profiling" mapstructure:"enable_profiling"`

	// Debug enables gin debug mode and debug-level logging.
	Debug bool `json:"debug" mapstructure:"debug"`

	// LogFile duplicates logs to a file when set.
	LogFile string `json:"log_file" mapstructure:"log_file"`
}

// NewServingOptions creates a ServingOptions with sane defaults. The
// defaults mirror a local-development deployment with a browser frontend
// on port 3000.
func NewServingOptions() *ServingOptions {
	return &ServingOptions{
		BindAddress: "127.0.0.1",
		BindPort:    8000,
		CORSOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
	}
}

// Addr returns the host:port string to listen on.
func (o *ServingOptions) Addr() string {
	return fmt.Sprintf("%s:%d", o.BindAddress, o.BindPort)
}

// Validate checks the ServingOptions for correctness.
func (o *ServingOptions) Validate() []error {
	var errs []error
	if o.BindPort < 1 || o.BindPort > 65535 {
		errs = append(errs, fmt.Errorf("serving: bind_port %d must be between 1 and 65535", o.BindPort))
	}
	if o.BindAddress != "" && net.ParseIP(o.BindAddress) == nil {
		errs = append(errs, fmt.Errorf("serving: bind_address %q is not a valid IP address", o.BindAddress))
	}
	return errs
}

// AddFlags adds the serving flags to the given flag set.
func (o *ServingOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BindAddress, "serving.bind-address", o.BindAddress, "IP address to listen on.")
	fs.IntVar(&o.BindPort, "serving.bind-port", o.BindPort, "TCP port to listen on.")
	fs.BoolVar(&o.AuthEnabled, "serving.auth-enabled", o.AuthEnabled, "Require a Bearer token on API requests.")
	fs.StringVar(&o.AuthToken, "serving.auth-token", o.AuthToken, "Bearer token (falls back to GITSEER_GATEWAY_TOKEN).")
	fs.StringSliceVar(&o.CORSOrigins, "serving.cors-origins", o.CORSOrigins, "Allowed CORS origins.")
	fs.BoolVar(&o.EnableProfiling, "serving.enable-profiling", o.EnableProfiling, "Mount pprof routes under /debug/pprof.")
	fs.BoolVar(&o.Debug, "serving.debug", o.Debug, "Enable debug mode.")
	fs.StringVar(&o.LogFile, "serving.log-file", o.LogFile, "Duplicate logs to this file.")
}
