package gitseerd

import (
	"github.com/morgatz/gitseer/internal/gitseerd/config"
)

// Run assembles the API server from the given configuration and blocks
// until it exits.
func Run(cfg *config.Config) error {
	server, err := createAPIServer(cfg)
	if err != nil {
		return err
	}

	return server.PrepareRun().Run()
}
