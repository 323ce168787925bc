package main

import (
	"os"

	"github.com/morgatz/gitseer/internal/gitseerctl/cmd"
)

func main() {
	command := cmd.NewDefaultGitseerCtlCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
