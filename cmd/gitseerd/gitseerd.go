package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/morgatz/gitseer/internal/gitseerd"
)

func main() {
	if err := gitseerd.NewApp("gitseerd").Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
