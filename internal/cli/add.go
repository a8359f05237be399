package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ltuala/student-management/internal/student"
)

// FormOptions holds the record fields shared by add and edit.
type FormOptions struct {
	*RootOptions
	Name   string
	Course string
	Mobile string
}

func (o *FormOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Name, "name", "", "student name")
	cmd.Flags().StringVar(&o.Course, "course", "", fmt.Sprintf("course (one of %v)", student.Courses()))
	cmd.Flags().StringVar(&o.Mobile, "mobile", "", "mobile number")
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FormOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Insert a record",
		Long: `Insert a new record and print the id the store assigned.

Name and mobile are stored as given (empty is allowed). The course must be
one of Biology, Math, Astronomy or Physics; matching ignores case.

Example:
  students add --name Bob --course Math --mobile 555-1234`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, cmd)
		},
	}

	opts.bind(cmd)
	_ = cmd.MarkFlagRequired("course")

	return cmd
}

func runAdd(opts *FormOptions, cmd *cobra.Command) error {
	out := opts.Formatter(cmd)

	form := student.Form{
		Name:   opts.Name,
		Course: student.NormalizeCourse(opts.Course),
		Mobile: opts.Mobile,
	}
	if err := form.Validate(); err != nil {
		return out.Fail(ExitCommandError, CodeInvalid, "invalid record", err)
	}

	id, err := opts.Records().Insert(cmd.Context(), form.Name, form.Course, form.Mobile)
	if err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to insert record", err)
	}

	return out.Success(fmt.Sprintf("Inserted record %d.", id), form.Apply(student.Student{ID: id}))
}
