package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ltuala/student-management/internal/roster"
)

const helpText = `Commands:
  list            reload and show all records
  add             insert a new record
  select <row>    select a row for edit or delete
  edit            edit the selected record
  delete          delete the selected record
  search          highlight records with an exact name
  help            show this help
  quit            leave`

// Session dispatches typed commands to the dialogs. Each command runs one
// record operation to completion, then one view update, before the next
// command is read.
type Session struct {
	records roster.Records
	view    *ListView
	prompt  *Prompter
	out     io.Writer
	logger  *slog.Logger
}

// NewSession returns a Session reading commands from in and writing to out.
func NewSession(records roster.Records, in io.Reader, out io.Writer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		records: records,
		view:    NewListView(records),
		prompt:  NewPrompter(in, out),
		out:     out,
		logger:  logger,
	}
}

// View returns the session's list view.
func (s *Session) View() *ListView {
	return s.view
}

// Run loads the list, shows it and processes commands until quit or end of
// input. Store errors end the session and are returned unchanged.
func (s *Session) Run(ctx context.Context) error {
	if err := s.refresh(ctx); err != nil {
		return err
	}

	for {
		fmt.Fprint(s.out, "> ")
		line, err := s.prompt.Line()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}

		quit, err := s.dispatch(ctx, line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

func (s *Session) dispatch(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	command, args := strings.ToLower(fields[0]), fields[1:]
	s.logger.DebugContext(ctx, "session command", "command", command)

	switch command {
	case "list", "ls":
		return false, s.refresh(ctx)

	case "add", "insert":
		d := &InsertDialog{Records: s.records, Refresh: s.refresh, Prompt: s.prompt}
		return false, s.ignoreEOF(d.Run(ctx))

	case "select", "sel":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "Usage: select <row>")
			return false, nil
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(s.out, "Invalid row %q.\n", args[0])
			return false, nil
		}
		if err := s.view.Select(n); err != nil {
			fmt.Fprintf(s.out, "%v.\n", err)
			return false, nil
		}
		return false, s.view.Render(s.out)

	case "edit":
		target, err := s.view.Selected()
		if errors.Is(err, ErrNoSelection) {
			fmt.Fprintln(s.out, "Select a row first (select <row>).")
			return false, nil
		}
		d := &EditDialog{Records: s.records, Refresh: s.refresh, Prompt: s.prompt, Target: target}
		return false, s.ignoreEOF(d.Run(ctx))

	case "delete", "rm":
		target, err := s.view.Selected()
		if errors.Is(err, ErrNoSelection) {
			fmt.Fprintln(s.out, "Select a row first (select <row>).")
			return false, nil
		}
		d := &DeleteDialog{Records: s.records, Refresh: s.refresh, Prompt: s.prompt, ID: target.ID}
		_, err = d.Run(ctx)
		return false, s.ignoreEOF(err)

	case "search", "find":
		d := &SearchDialog{Records: s.records, View: s.view, Prompt: s.prompt}
		matches, err := d.Run(ctx)
		if err != nil {
			return false, s.ignoreEOF(err)
		}
		fmt.Fprintf(s.out, "%d match(es).\n", len(matches))
		return false, s.view.Render(s.out)

	case "help", "?":
		fmt.Fprintln(s.out, helpText)
		return false, nil

	case "quit", "exit", "q":
		return true, nil

	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type help.\n", command)
		return false, nil
	}
}

// refresh reloads the view and shows it. Dialogs receive it as their Refresher.
func (s *Session) refresh(ctx context.Context) error {
	if err := s.view.Refresh(ctx); err != nil {
		return err
	}
	return s.view.Render(s.out)
}

// ignoreEOF treats input ending inside a dialog like closing the dialog.
func (s *Session) ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
