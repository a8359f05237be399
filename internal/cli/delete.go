package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ltuala/student-management/internal/ui"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Yes bool // skip the confirmation prompt
}

// DeleteResult is the JSON payload of the delete command.
type DeleteResult struct {
	ID      int64  `json:"id"`
	Deleted bool   `json:"deleted"`
	Message string `json:"message,omitempty"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record by id",
		Long: `Delete the record with the given id after confirmation.

Answering anything but y/yes cancels. An id that matches no record is not an
error.

Example:
  students delete 3
  students delete 3 --yes`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func runDelete(opts *DeleteOptions, rawID string, cmd *cobra.Command) error {
	out := opts.Formatter(cmd)
	ctx := cmd.Context()

	id, err := parseID(rawID)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalid, "invalid id", err)
	}

	records := opts.Records()

	if opts.Yes {
		if err := records.Delete(ctx, id); err != nil {
			return out.Fail(ExitCommandError, CodeStore, "failed to delete record", err)
		}
		return out.Success(ui.DeletedMessage, DeleteResult{ID: id, Deleted: true, Message: ui.DeletedMessage})
	}

	// Prompts must not end up inside a JSON document.
	promptOut := cmd.OutOrStdout()
	if out.IsJSON() {
		promptOut = cmd.ErrOrStderr()
	}
	dialog := &ui.DeleteDialog{
		Records: records,
		Refresh: func(context.Context) error { return nil },
		Prompt:  ui.NewPrompter(cmd.InOrStdin(), promptOut),
		ID:      id,
	}

	deleted, err := dialog.Run(ctx)
	if errors.Is(err, io.EOF) {
		deleted, err = false, nil
	}
	if err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to delete record", err)
	}

	if out.IsJSON() {
		result := DeleteResult{ID: id, Deleted: deleted}
		if deleted {
			result.Message = ui.DeletedMessage
		}
		return out.Success("", result)
	}
	if !deleted {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
	}
	return nil
}
