package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ltuala/student-management/internal/ui"
)

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Find records by exact name",
		Long: `Find records whose name equals the argument exactly (case-sensitive, no
partial matches).

Text output shows the whole list with the matches marked "*". JSON output
contains only the matches.

Example:
  students search Alice
  students search "Bob Smith" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(rootOpts, args[0], cmd)
		},
	}
}

func runSearch(opts *RootOptions, name string, cmd *cobra.Command) error {
	out := opts.Formatter(cmd)
	ctx := cmd.Context()
	records := opts.Records()

	matches, err := records.FindByName(ctx, name)
	if err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to search records", err)
	}
	if out.IsJSON() {
		return out.Success("", matches)
	}

	view := ui.NewListView(records)
	if err := view.Refresh(ctx); err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to list records", err)
	}
	ids := make([]int64, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	view.Highlight(ids...)

	fmt.Fprintf(cmd.OutOrStdout(), "%d match(es).\n", len(matches))
	return view.Render(cmd.OutOrStdout())
}
