// Package ui is the terminal front end of the roster: a list view and the
// insert, edit, delete and search dialogs, tied together by a Session.
//
// Nothing here reaches for process-wide state. Dialogs receive the
// roster.Records they operate on and a Refresher to call afterwards.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/ltuala/student-management/internal/roster"
	"github.com/ltuala/student-management/internal/student"
)

// ErrNoSelection is returned when an action needs a selected row.
var ErrNoSelection = errors.New("no row selected")

// Refresher reloads whatever view shows the records.
type Refresher func(ctx context.Context) error

// Highlighter marks records in an already loaded view.
type Highlighter interface {
	Highlight(ids ...int64)
}

// ListView is the main table: Id, Name, Course, Mobile.
// It keeps the rows from the last refresh, the selected row and the set of
// highlighted ids.
type ListView struct {
	records     roster.Records
	rows        []student.Student
	selected    int
	highlighted map[int64]bool
}

// NewListView returns an empty view over records. Call Refresh to load it.
func NewListView(records roster.Records) *ListView {
	return &ListView{
		records:     records,
		rows:        []student.Student{},
		selected:    -1,
		highlighted: map[int64]bool{},
	}
}

// Refresh reloads every row. Selection and highlights are cleared.
func (v *ListView) Refresh(ctx context.Context) error {
	rows, err := v.records.List(ctx)
	if err != nil {
		return err
	}
	v.rows = rows
	v.selected = -1
	v.highlighted = map[int64]bool{}
	return nil
}

// Rows returns the rows from the last refresh.
func (v *ListView) Rows() []student.Student {
	return v.rows
}

// Select marks the 1-based row n as current.
func (v *ListView) Select(n int) error {
	if n < 1 || n > len(v.rows) {
		return fmt.Errorf("row %d out of range 1..%d", n, len(v.rows))
	}
	v.selected = n - 1
	return nil
}

// Selected returns the current row.
func (v *ListView) Selected() (student.Student, error) {
	if v.selected < 0 || v.selected >= len(v.rows) {
		return student.Student{}, ErrNoSelection
	}
	return v.rows[v.selected], nil
}

// Highlight replaces the highlighted set with ids. Ids that are not in the
// loaded rows are ignored when rendering.
func (v *ListView) Highlight(ids ...int64) {
	v.highlighted = make(map[int64]bool, len(ids))
	for _, id := range ids {
		v.highlighted[id] = true
	}
}

// IsHighlighted reports whether the row with id is highlighted.
func (v *ListView) IsHighlighted(id int64) bool {
	return v.highlighted[id]
}

// Render writes the table. The first column carries the row number, prefixed
// with ">" for the selected row and "*" for highlighted rows.
func (v *ListView) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tId\tName\tCourse\tMobile")
	for i, r := range v.rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", v.marker(i, r.ID), r.ID, r.Name, r.Course, r.Mobile)
	}
	return tw.Flush()
}

func (v *ListView) marker(i int, id int64) string {
	mark := " "
	switch {
	case i == v.selected:
		mark = ">"
	case v.highlighted[id]:
		mark = "*"
	}
	return mark + strconv.Itoa(i+1)
}
