package gitseerd

import (
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/morgatz/gitseer/internal/gitseerd/config"
	"github.com/morgatz/gitseer/internal/gitseerd/options"
	"github.com/morgatz/gitseer/pkg/logger"
)

// NewApp builds the gitseerd root command: flags, config file loading via
// viper, and the options -> config -> Run wiring.
func NewApp(basename string) *cobra.Command {
	opts := options.NewOptions()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   basename,
		Short: "gitseerd is the gitseer chat orchestration daemon",
		Long: heredoc.Doc(`
			gitseerd serves a streaming chat API that lets an LLM inspect GitHub
			repositories through MCP tool servers.

			It reassembles streamed tool-call fragments, dispatches tool calls to
			the configured MCP servers (GitHub data, Playwright screenshots),
			compacts tool output before it re-enters the conversation, and
			relays everything to the caller as a server-sent event stream.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfgFile, opts); err != nil {
				return err
			}
			if err := opts.Complete(); err != nil {
				return err
			}
			if errs := opts.Validate(); len(errs) > 0 {
				return fmt.Errorf("invalid options:\n  %s", joinErrors(errs))
			}

			logger.SetDebug(opts.ServingOptions.Debug)
			if err := logger.InitLog(opts.ServingOptions.LogFile); err != nil {
				return err
			}
			defer logger.FlushLog()

			cfg, err := config.CreateConfigFromOptions(opts)
			if err != nil {
				return err
			}

			logger.Debug("[Gitseerd] effective options: %s", opts)
			return Run(cfg)
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "Path to the gitseerd configuration file.")
	opts.AddFlags(cmd.Flags())

	return cmd
}

// loadConfig merges the optional YAML config file and GITSEER_* environment
// variables into opts. Explicit command-line flags win over both.
func loadConfig(cmd *cobra.Command, cfgFile string, opts *options.Options) error {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("gitseerd")
		v.AddConfigPath("conf")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.gitseer")
		}
	}
	v.SetEnvPrefix("GITSEER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing default config is fine; an explicit one must exist.
		if _, notFound := err.(viper.ConfigFileNotFoundError); cfgFile != "" || !notFound {
			return fmt.Errorf("read config: %w", err)
		}
	}

	// Remember flags the user set explicitly; the config file must not
	// override those.
	fs := cmd.Flags()
	explicit := map[string]string{}
	fs.Visit(func(f *pflag.Flag) {
		explicit[f.Name] = f.Value.String()
	})

	if err := v.Unmarshal(opts); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	for name, value := range explicit {
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("re-apply flag --%s: %w", name, err)
		}
	}
	return nil
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n  ")
}
