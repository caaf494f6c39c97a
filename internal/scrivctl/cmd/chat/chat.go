package chat

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	wordwrap "github.com/mitchellh/go-wordwrap"
	"github.com/moby/term"
	"github.com/spf13/cobra"

	"github.com/kiosk404/scrivener/pkg/cli/genericclioptions"
)

var chatExample = heredoc.Doc(`
		# Interactive chat mode
		scrivctl chat

		# Single message mode
		scrivctl chat "back up my documents folder every night"

		# Continue a conversation under a specific persona
		scrivctl chat --persona=devops-engineer --conversation=c42 "add log rotation"

		# Talk to a remote server
		scrivctl chat --server=http://automation-host:8000 "list large files"`)

// ChatOptions holds the flags of the chat sub command.
type ChatOptions struct {
	ServerAddr     string
	ConversationID string
	PersonaID      string
	ChannelID      string
	Stream         bool

	genericclioptions.IOStreams
}

// NewChatOptions returns an initialized ChatOptions instance.
func NewChatOptions(ioStreams genericclioptions.IOStreams) *ChatOptions {
	return &ChatOptions{
		ServerAddr: "http://localhost:8000",
		Stream:     true,
		IOStreams:  ioStreams,
	}
}

// NewCmdChat returns new initialized instance of the chat sub command.
func NewCmdChat(ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := NewChatOptions(ioStreams)

	cmd := &cobra.Command{
		Use:                   "chat [message]",
		DisableFlagsInUseLine: true,
		Short:                 "Chat with the scriptorium server",
		Long: heredoc.Doc(`
			Start a conversation with the scriptorium automation assistant.

			Without arguments an interactive prompt opens. With a message
			argument the message is sent once and the reply printed.`),
		Example: chatExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
	}

	cmd.Flags().StringVar(&o.ServerAddr, "server", o.ServerAddr, "Scriptorium HTTP server address")
	cmd.Flags().StringVar(&o.ConversationID, "conversation", o.ConversationID, "Conversation id to continue")
	cmd.Flags().StringVar(&o.PersonaID, "persona", o.PersonaID, "Persona id to respond as")
	cmd.Flags().StringVar(&o.ChannelID, "channel", o.ChannelID, "Channel id shaping the reply format")
	cmd.Flags().BoolVar(&o.Stream, "stream", o.Stream, "Stream the reply as it is produced")

	return cmd
}

// Complete fills derived defaults.
func (o *ChatOptions) Complete(args []string) error {
	if o.ConversationID == "" {
		o.ConversationID = fmt.Sprintf("cli-%d", time.Now().UnixNano())
	}
	if !strings.HasPrefix(o.ServerAddr, "http://") && !strings.HasPrefix(o.ServerAddr, "https://") {
		o.ServerAddr = "http://" + o.ServerAddr
	}
	return nil
}

// Run executes the chat sub command.
func (o *ChatOptions) Run(ctx context.Context, args []string) error {
	client := NewClient(o.ServerAddr, o.ConversationID, o.PersonaID, o.ChannelID, nil)

	if len(args) > 0 {
		return o.runOnce(ctx, client, strings.Join(args, " "))
	}
	return o.runInteractive(ctx, client)
}

func (o *ChatOptions) runOnce(ctx context.Context, client *Client, message string) error {
	if o.Stream {
		_, err := client.ChatStream(ctx, message, func(delta string) {
			fmt.Fprint(o.Out, delta)
		})
		fmt.Fprintln(o.Out)
		return err
	}

	resp, err := client.Chat(ctx, message)
	if err != nil {
		return err
	}
	fmt.Fprintln(o.Out, wrapToTerminal(resp.Response))
	return nil
}

func (o *ChatOptions) runInteractive(ctx context.Context, client *Client) error {
	promptColor := color.New(color.FgCyan, color.Bold)
	metaColor := color.New(color.FgHiBlack)

	fmt.Fprintln(o.Out, "Scriptorium chat. Type 'exit' or Ctrl-D to quit.")
	scanner := bufio.NewScanner(o.In)
	for {
		promptColor.Fprint(o.Out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(o.Out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		resp, err := client.Chat(ctx, line)
		if err != nil {
			fmt.Fprintf(o.ErrOut, "%v %v\n", color.RedString("Error:"), err)
			continue
		}
		fmt.Fprintln(o.Out, wrapToTerminal(resp.Response))
		if resp.Provider != "" {
			metaColor.Fprintf(o.Out, "[%s/%s]\n", resp.Provider, resp.Model)
		}
	}
}

// wrapToTerminal wraps text to the terminal width, falling back to 80 columns.
func wrapToTerminal(text string) string {
	width := uint(80)
	if ws, err := term.GetWinsize(os.Stdout.Fd()); err == nil && ws.Width > 20 {
		width = uint(ws.Width) - 2
	}
	return wordwrap.WrapString(text, width)
}
