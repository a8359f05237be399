package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ltuala/student-management/internal/store"
)

// InitResult is the JSON payload of the init command.
type InitResult struct {
	Database string `json:"database"`
	Table    string `json:"table"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the students table",
		Long: `Create the students table in the configured database file. Running it
again is harmless.

No other command creates the table; they fail with "no such table" until
init has been run.

Example:
  students init --db ./roster.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	out := opts.Formatter(cmd)
	conn := opts.Connector()
	out.VerboseLog("Using driver %s for %s", conn.Driver(), conn.Path())

	if err := conn.Bootstrap(cmd.Context()); err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to create table", err)
	}
	opts.Logger().Info("table ready", "db", conn.Path(), "table", store.TableStudents)

	return out.Success(
		fmt.Sprintf("Table %s ready in %s.", store.TableStudents, conn.Path()),
		InitResult{Database: conn.Path(), Table: store.TableStudents},
	)
}
