package ui

import (
	"context"
	"fmt"

	"github.com/ltuala/student-management/internal/roster"
	"github.com/ltuala/student-management/internal/student"
)

// DeletedMessage is shown after a successful delete.
const DeletedMessage = "The record was deleted successfully."

// InsertDialog collects a new record and stores it.
type InsertDialog struct {
	Records roster.Records
	Refresh Refresher
	Prompt  *Prompter
}

// Run asks for name, course and mobile, inserts them and refreshes.
func (d *InsertDialog) Run(ctx context.Context) error {
	fmt.Fprintln(d.Prompt.Out(), "Insert Student Data")

	form, err := askForm(d.Prompt, student.Student{})
	if err != nil {
		return err
	}
	if _, err := d.Records.Insert(ctx, form.Name, form.Course, form.Mobile); err != nil {
		return err
	}
	return d.Refresh(ctx)
}

// EditDialog updates the selected record. Fields default to the current
// values, so an empty answer leaves a field unchanged.
type EditDialog struct {
	Records roster.Records
	Refresh Refresher
	Prompt  *Prompter
	Target  student.Student
}

// Run asks for the new values, updates the row and refreshes.
func (d *EditDialog) Run(ctx context.Context) error {
	fmt.Fprintln(d.Prompt.Out(), "Update Student Data")

	form, err := askForm(d.Prompt, d.Target)
	if err != nil {
		return err
	}
	if err := d.Records.Update(ctx, form.Apply(d.Target)); err != nil {
		return err
	}
	return d.Refresh(ctx)
}

// DeleteDialog confirms and removes one record.
type DeleteDialog struct {
	Records roster.Records
	Refresh Refresher
	Prompt  *Prompter
	ID      int64
}

// Run asks for confirmation. On yes it deletes, refreshes and reports
// success; on no it returns without touching the store.
func (d *DeleteDialog) Run(ctx context.Context) (bool, error) {
	ok, err := d.Prompt.Confirm("Are you sure you want to delete?")
	if err != nil || !ok {
		return false, err
	}
	if err := d.Records.Delete(ctx, d.ID); err != nil {
		return false, err
	}
	if err := d.Refresh(ctx); err != nil {
		return false, err
	}
	fmt.Fprintln(d.Prompt.Out(), DeletedMessage)
	return true, nil
}

// SearchDialog looks up a name and highlights the matches in the loaded view
// instead of reloading the whole list.
type SearchDialog struct {
	Records roster.Records
	View    Highlighter
	Prompt  *Prompter
}

// Run asks for a name and returns the matching rows.
func (d *SearchDialog) Run(ctx context.Context) ([]student.Student, error) {
	name, err := d.Prompt.Ask("Name", "")
	if err != nil {
		return nil, err
	}
	matches, err := d.Records.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	d.View.Highlight(ids...)
	return matches, nil
}

func askForm(p *Prompter, current student.Student) (student.Form, error) {
	name, err := p.Ask("Name", current.Name)
	if err != nil {
		return student.Form{}, err
	}

	// Like a combo box, a current value outside the list falls back to the
	// first entry.
	courses := student.Courses()
	def := courses[0]
	for _, c := range courses {
		if c == current.Course {
			def = c
		}
	}
	course, err := p.Choose("Course", courses, def)
	if err != nil {
		return student.Form{}, err
	}

	mobile, err := p.Ask("Mobile", current.Mobile)
	if err != nil {
		return student.Form{}, err
	}

	form := student.Form{Name: name, Course: course, Mobile: mobile}
	if err := form.Validate(); err != nil {
		return student.Form{}, err
	}
	return form, nil
}
