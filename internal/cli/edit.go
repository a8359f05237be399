package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ltuala/student-management/internal/student"
)

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FormOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a record by id",
		Long: `Update the record with the given id. Only the fields passed as flags
change; the others keep their current values.

An id that matches no record is not an error: nothing is changed.

Example:
  students edit 3 --course Physics
  students edit 3 --name "Bob Smith" --mobile 555-9999`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, args[0], cmd)
		},
	}

	opts.bind(cmd)

	return cmd
}

func runEdit(opts *FormOptions, rawID string, cmd *cobra.Command) error {
	out := opts.Formatter(cmd)
	ctx := cmd.Context()

	id, err := parseID(rawID)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalid, "invalid id", err)
	}

	records := opts.Records()
	rows, err := records.List(ctx)
	if err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to read records", err)
	}
	target := student.Student{ID: id}
	found := false
	for _, row := range rows {
		if row.ID == id {
			target, found = row, true
			break
		}
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		target.Name = opts.Name
	}
	if flags.Changed("mobile") {
		target.Mobile = opts.Mobile
	}
	if flags.Changed("course") {
		form := student.Form{Course: student.NormalizeCourse(opts.Course)}
		if err := form.Validate(); err != nil {
			return out.Fail(ExitCommandError, CodeInvalid, "invalid record", err)
		}
		target.Course = form.Course
	}

	if err := records.Update(ctx, target); err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to update record", err)
	}

	if !found {
		return out.Success(fmt.Sprintf("No record %d; nothing changed.", id), target)
	}
	return out.Success(fmt.Sprintf("Updated record %d.", id), target)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id must be an integer: %q", raw)
	}
	return id, nil
}
