package cmd

import (
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/kiosk404/scrivener/internal/scrivctl/cmd/chat"
	"github.com/kiosk404/scrivener/internal/scrivctl/cmd/info"
	"github.com/kiosk404/scrivener/internal/scrivctl/cmd/tasks"
	"github.com/kiosk404/scrivener/pkg/cli/genericclioptions"
	"github.com/kiosk404/scrivener/pkg/version"
)

// NewDefaultScrivCtlCommand creates the `scrivctl` command with default arguments.
func NewDefaultScrivCtlCommand() *cobra.Command {
	return NewScrivCtlCommand(os.Stdin, os.Stdout, os.Stderr)
}

// NewScrivCtlCommand creates the `scrivctl` command with the given streams.
func NewScrivCtlCommand(in io.Reader, out, err io.Writer) *cobra.Command {
	cmds := &cobra.Command{
		Use:     "scrivctl",
		Short:   "scrivctl talks to a scriptorium automation server",
		Version: version.Get().GitVersion,
		Long: heredoc.Doc(`
			scrivctl is the CLI client for the scriptorium server.

			It chats with the automation assistant, inspects script execution
			history and prints host information.`),
		Run: runHelp,
	}

	ioStreams := genericclioptions.IOStreams{In: in, Out: out, ErrOut: err}

	cmds.AddCommand(chat.NewCmdChat(ioStreams))
	cmds.AddCommand(tasks.NewCmdTasks(ioStreams))
	cmds.AddCommand(info.NewCmdInfo(ioStreams))

	return cmds
}

func runHelp(cmd *cobra.Command, args []string) {
	_ = cmd.Help()
}
