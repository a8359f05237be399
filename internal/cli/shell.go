package cli

import (
	"github.com/spf13/cobra"

	"github.com/ltuala/student-management/internal/ui"
)

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive list view",
		Long: `Open the interactive list view. Type "help" inside the shell for the
available commands; "quit" or end of input leaves.

Example:
  students shell --db ./roster.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(rootOpts, cmd)
		},
	}
}

func runShell(opts *RootOptions, cmd *cobra.Command) error {
	logger := opts.Logger()
	session := ui.NewSession(opts.Records(), cmd.InOrStdin(), cmd.OutOrStdout(), logger)

	logger.Debug("shell started")
	if err := session.Run(cmd.Context()); err != nil {
		out := opts.Formatter(cmd)
		return out.Fail(ExitCommandError, CodeStore, "shell stopped", err)
	}
	return nil
}
