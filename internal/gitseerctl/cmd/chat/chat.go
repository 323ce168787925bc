package chat

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/morgatz/gitseer/internal/gitseerctl/cmd/util"
)

var chatExample = heredoc.Doc(`
	# Interactive chat mode
	gitseerctl chat

	# Single message mode
	gitseerctl chat "What are the most active areas of golang/go lately?"

	# Connect to a remote daemon with a token
	gitseerctl chat --server=http://gitseer.internal:8000 --token=$GITSEER_GATEWAY_TOKEN`)

// ChatOptions holds the flags for the chat subcommand.
type ChatOptions struct {
	ServerAddr string
	Token      string
	Plain      bool

	util.IOStreams
}

// NewChatOptions returns an initialized ChatOptions instance.
func NewChatOptions(ioStreams util.IOStreams) *ChatOptions {
	return &ChatOptions{
		IOStreams:  ioStreams,
		ServerAddr: "http://localhost:8000",
	}
}

// NewCmdChat returns the 'chat' subcommand.
func NewCmdChat(ioStreams util.IOStreams) *cobra.Command {
	o := NewChatOptions(ioStreams)

	cmd := &cobra.Command{
		Use:                   "chat [message]",
		DisableFlagsInUseLine: true,
		Short:                 "Chat with the gitseer daemon",
		Long: heredoc.Doc(`
			Start a conversation with the gitseer daemon.

			Without arguments an interactive terminal session opens. With a
			message argument the message is sent once and the streamed answer
			is printed. Tool activity (GitHub lookups, screenshots) is shown
			as it happens.`),
		Example: chatExample,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Complete())
			util.CheckErr(o.Run(cmd.Context(), args))
		},
	}

	cmd.Flags().StringVar(&o.ServerAddr, "server", o.ServerAddr, "gitseerd HTTP address.")
	cmd.Flags().StringVar(&o.Token, "token", o.Token, "Bearer token (falls back to GITSEER_GATEWAY_TOKEN).")
	cmd.Flags().BoolVar(&o.Plain, "plain", o.Plain, "Disable markdown rendering of answers.")

	return cmd
}

// Complete normalizes flag values.
func (o *ChatOptions) Complete() error {
	if !strings.HasPrefix(o.ServerAddr, "http://") && !strings.HasPrefix(o.ServerAddr, "https://") {
		o.ServerAddr = "http://" + o.ServerAddr
	}
	if o.Token == "" {
		o.Token = os.Getenv("GITSEER_GATEWAY_TOKEN")
	}
	return nil
}

// Run executes the chat subcommand.
func (o *ChatOptions) Run(ctx context.Context, args []string) error {
	client := NewClient(o.ServerAddr, o.Token, nil)

	if len(args) > 0 {
		return o.runOnce(ctx, client, strings.Join(args, " "))
	}
	return o.runInteractive(ctx, client)
}

// runOnce sends a single message and streams the answer to stdout.
func (o *ChatOptions) runOnce(ctx context.Context, client *Client, message string) error {
	messages := []ChatMessage{{Role: "user", Content: message}}

	content, err := client.ChatStream(ctx, messages, func(ev *StreamEvent) {
		switch ev.Type {
		case EventContent:
			fmt.Fprint(o.Out, ev.Content)
		case EventToolCall:
			fmt.Fprintln(o.Out)
			printToolCall(o.Out, ev.ToolCall)
		case EventToolResult:
			printToolResult(o.Out, ev.Result)
		}
	})
	fmt.Fprintln(o.Out)
	if err != nil {
		return err
	}

	if !o.Plain && content != "" {
		// Overwrite the raw streamed text with the rendered version.
		rawLines := strings.Count(content, "\n") + 1
		for i := 0; i < rawLines; i++ {
			fmt.Fprint(o.Out, "\033[A\033[K")
		}
		fmt.Fprintln(o.Out, renderMarkdown(content, termWidth()-4))
	}
	return nil
}

// runInteractive runs a terminal chat loop with conversation history. Plain
// terminal output, no alt screen, so answers stay selectable.
func (o *ChatOptions) runInteractive(ctx context.Context, client *Client) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintf(o.Out, "\n\n%s\n\n", dim.Sprint("Goodbye!"))
		os.Exit(0)
	}()

	o.printBanner(client)

	history := []ChatMessage{}
	reader := bufio.NewScanner(o.In)
	prompt := labelUser.Sprint("> ")

	for {
		fmt.Fprint(o.Out, prompt)
		if !reader.Scan() {
			fmt.Fprintf(o.Out, "\n%s\n\n", dim.Sprint("Goodbye!"))
			return nil
		}

		input := strings.TrimSpace(reader.Text())
		if input == "" {
			continue
		}

		switch input {
		case "/quit", "/exit":
			fmt.Fprintf(o.Out, "\n%s\n\n", dim.Sprint("Goodbye!"))
			return nil
		case "/clear":
			history = []ChatMessage{}
			fmt.Fprintf(o.Out, "%s\n\n", dim.Sprint("Conversation cleared."))
			continue
		}

		history = append(history, ChatMessage{Role: "user", Content: input})

		printSeparator(o.Out)
		fmt.Fprintln(o.Out, labelAssistant.Sprint("gitseer"))

		var streamed strings.Builder
		content, err := client.ChatStream(ctx, history, func(ev *StreamEvent) {
			switch ev.Type {
			case EventContent:
				fmt.Fprint(o.Out, ev.Content)
				streamed.WriteString(ev.Content)
			case EventToolCall:
				fmt.Fprintln(o.Out)
				printToolCall(o.Out, ev.ToolCall)
			case EventToolResult:
				printToolResult(o.Out, ev.Result)
			}
		})
		fmt.Fprintln(o.Out)

		if err != nil {
			if content != "" {
				history = append(history, ChatMessage{Role: "assistant", Content: content})
			}
			fmt.Fprintf(o.Out, "%s %v\n\n", labelError.Sprint("Error:"), err)
			continue
		}

		history = append(history, ChatMessage{Role: "assistant", Content: content})

		if !o.Plain && content != "" {
			rawLines := strings.Count(streamed.String(), "\n") + 1
			for i := 0; i < rawLines; i++ {
				fmt.Fprint(o.Out, "\033[A\033[K")
			}
			fmt.Fprintln(o.Out, renderMarkdown(content, termWidth()-4))
		}
		fmt.Fprintln(o.Out)
	}
}

func (o *ChatOptions) printBanner(client *Client) {
	printSeparator(o.Out)
	fmt.Fprintln(o.Out, labelAssistant.Sprint("gitseer chat"))
	fmt.Fprintln(o.Out)
	fmt.Fprintf(o.Out, "  Server: %s\n", client.BaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if health, err := client.Healthz(ctx); err != nil {
		fmt.Fprintf(o.Out, "  Status: %s\n", labelError.Sprint("unreachable"))
	} else if servers, ok := health["mcp_servers"].(map[string]interface{}); ok {
		for name, status := range servers {
			fmt.Fprintf(o.Out, "  MCP %s: %v\n", name, status)
		}
	}
	fmt.Fprintln(o.Out)
	fmt.Fprintln(o.Out, dim.Sprint("  Type a message and press Enter to send"))
	fmt.Fprintln(o.Out, dim.Sprint("  /clear  - reset conversation"))
	fmt.Fprintln(o.Out, dim.Sprint("  /quit   - exit"))
	printSeparator(o.Out)
	fmt.Fprintln(o.Out)
}
