package cmd

import (
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/morgatz/gitseer/internal/gitseerctl/cmd/chat"
	"github.com/morgatz/gitseer/internal/gitseerctl/cmd/info"
	"github.com/morgatz/gitseer/internal/gitseerctl/cmd/util"
)

// NewDefaultGitseerCtlCommand creates the `gitseerctl` command with default
// streams.
func NewDefaultGitseerCtlCommand() *cobra.Command {
	return NewGitseerCtlCommand(os.Stdin, os.Stdout, os.Stderr)
}

// NewGitseerCtlCommand creates the root command and wires all subcommands.
func NewGitseerCtlCommand(in io.Reader, out, err io.Writer) *cobra.Command {
	cmds := &cobra.Command{
		Use:   "gitseerctl",
		Short: "gitseerctl talks to a gitseerd chat daemon",
		Long: heredoc.Doc(`
			gitseerctl is the terminal client for gitseerd.

			It streams chat answers from the daemon, showing tool activity
			(GitHub repository lookups, page screenshots) as it happens and
			rendering the final answer as markdown.`),
		Run: runHelp,
	}

	ioStreams := util.IOStreams{In: in, Out: out, ErrOut: err}

	cmds.AddCommand(chat.NewCmdChat(ioStreams))
	cmds.AddCommand(info.NewCmdInfo(ioStreams))

	return cmds
}

func runHelp(cmd *cobra.Command, args []string) {
	_ = cmd.Help()
}
