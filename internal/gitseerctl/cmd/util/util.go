package util

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// IOStreams bundles the three standard streams so commands stay testable.
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// DefaultIOStreams returns streams bound to the process stdio.
func DefaultIOStreams() IOStreams {
	return IOStreams{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr}
}

// CheckErr prints err and exits non-zero. Commands call it from Run so
// cobra's usage text is not dumped after runtime failures.
func CheckErr(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
	os.Exit(1)
}
