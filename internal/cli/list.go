package cli

import (
	"github.com/spf13/cobra"

	"github.com/ltuala/student-management/internal/ui"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every record",
		Long: `Show every record in the store's natural order.

Example:
  students list
  students list --db ./roster.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	out := opts.Formatter(cmd)

	view := ui.NewListView(opts.Records())
	if err := view.Refresh(cmd.Context()); err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to list records", err)
	}

	if out.IsJSON() {
		return out.Success("", view.Rows())
	}
	return view.Render(cmd.OutOrStdout())
}
