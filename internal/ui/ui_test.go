package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ltuala/student-management/internal/roster"
	"github.com/ltuala/student-management/internal/store"
	"github.com/ltuala/student-management/internal/student"
	"github.com/ltuala/student-management/internal/testutil"
)

func newRecords(t *testing.T) (*roster.Controller, *store.Connector) {
	t.Helper()
	conn := testutil.NewStore(t)
	return roster.NewController(conn, nil), conn
}

// failingRecords returns err from every operation.
type failingRecords struct {
	err error
}

func (f failingRecords) List(context.Context) ([]student.Student, error) { return nil, f.err }
func (f failingRecords) Insert(context.Context, string, string, string) (int64, error) {
	return 0, f.err
}
func (f failingRecords) Update(context.Context, student.Student) error { return f.err }
func (f failingRecords) Delete(context.Context, int64) error           { return f.err }
func (f failingRecords) FindByName(context.Context, string) ([]student.Student, error) {
	return nil, f.err
}

func TestListView_Render(t *testing.T) {
	records, conn := newRecords(t)
	testutil.Seed(t, conn,
		student.Student{Name: "Ann", Course: student.Math, Mobile: "111"},
		student.Student{Name: "Bob", Course: student.Physics, Mobile: "555-1234"},
	)

	v := NewListView(records)
	require.NoError(t, v.Refresh(context.Background()))
	require.NoError(t, v.Select(2))
	v.Highlight(1)

	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf))

	want := "#   Id  Name  Course   Mobile\n" +
		"*1  1   Ann   Math     111\n" +
		">2  2   Bob   Physics  555-1234\n"
	assert.Equal(t, want, buf.String())
}

func TestListView_SelectOutOfRange(t *testing.T) {
	records, _ := newRecords(t)
	v := NewListView(records)
	require.NoError(t, v.Refresh(context.Background()))

	assert.Error(t, v.Select(1))
	_, err := v.Selected()
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestListView_RefreshClearsSelectionAndHighlights(t *testing.T) {
	records, conn := newRecords(t)
	seeded := testutil.Seed(t, conn, student.Student{Name: "Ann", Course: student.Math, Mobile: "1"})

	v := NewListView(records)
	ctx := context.Background()
	require.NoError(t, v.Refresh(ctx))
	require.NoError(t, v.Select(1))
	v.Highlight(seeded[0].ID)

	require.NoError(t, v.Refresh(ctx))
	_, err := v.Selected()
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.False(t, v.IsHighlighted(seeded[0].ID))
}

func TestListView_RefreshError(t *testing.T) {
	sentinel := errors.New("disk gone")
	v := NewListView(failingRecords{err: sentinel})
	assert.ErrorIs(t, v.Refresh(context.Background()), sentinel)
}

func TestPrompter_AskDefault(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("\nvalue\n"), &out)

	got, err := p.Ask("Name", "Ann")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got)

	got, err = p.Ask("Name", "Ann")
	require.NoError(t, err)
	assert.Equal(t, "value", got)
	assert.Contains(t, out.String(), "Name [Ann]: ")
}

func TestPrompter_AskEOF(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), io.Discard)
	_, err := p.Ask("Name", "")
	assert.ErrorIs(t, err, io.EOF)
}

func TestPrompter_Choose(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"by_number", "3\n", student.Astronomy},
		{"by_name", "Physics\n", student.Physics},
		{"by_lowercase_name", "math\n", student.Math},
		{"default", "\n", student.Biology},
		{"retry_after_invalid", "Chemistry\n9\n2\n", student.Math},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)
			got, err := p.Choose("Course", student.Courses(), student.Biology)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompter_Confirm(t *testing.T) {
	for input, want := range map[string]bool{
		"y\n": true, "YES\n": true, "n\n": false, "\n": false, "maybe\n": false,
	} {
		p := NewPrompter(strings.NewReader(input), io.Discard)
		got, err := p.Confirm("Sure?")
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestInsertDialog(t *testing.T) {
	records, conn := newRecords(t)
	refreshed := 0
	d := &InsertDialog{
		Records: records,
		Refresh: func(context.Context) error { refreshed++; return nil },
		Prompt:  NewPrompter(strings.NewReader("Bob\n2\n555-1234\n"), io.Discard),
	}

	require.NoError(t, d.Run(context.Background()))

	rows := testutil.Dump(t, conn)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bob", rows[0].Name)
	assert.Equal(t, student.Math, rows[0].Course)
	assert.Equal(t, "555-1234", rows[0].Mobile)
	assert.Equal(t, 1, refreshed)
}

func TestEditDialog_KeepsBlankAnswers(t *testing.T) {
	records, conn := newRecords(t)
	seeded := testutil.Seed(t, conn,
		student.Student{Name: "Bob", Course: student.Math, Mobile: "555-1234"},
		student.Student{Name: "Eve", Course: student.Biology, Mobile: "1"},
	)
	refreshed := 0
	d := &EditDialog{
		Records: records,
		Refresh: func(context.Context) error { refreshed++; return nil },
		Prompt:  NewPrompter(strings.NewReader("\nphysics\n\n"), io.Discard),
		Target:  seeded[0],
	}

	require.NoError(t, d.Run(context.Background()))

	rows := testutil.Dump(t, conn)
	assert.Equal(t, student.Student{ID: seeded[0].ID, Name: "Bob", Course: student.Physics, Mobile: "555-1234"}, rows[0])
	assert.Equal(t, seeded[1], rows[1])
	assert.Equal(t, 1, refreshed)
}

func TestEditDialog_UnknownCourseFallsBackToFirst(t *testing.T) {
	records, conn := newRecords(t)
	seeded := testutil.Seed(t, conn, student.Student{Name: "Bob", Course: "Chemistry", Mobile: "1"})
	d := &EditDialog{
		Records: records,
		Refresh: func(context.Context) error { return nil },
		Prompt:  NewPrompter(strings.NewReader("\n\n\n"), io.Discard),
		Target:  seeded[0],
	}

	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, student.Biology, testutil.Dump(t, conn)[0].Course)
}

func TestDeleteDialog(t *testing.T) {
	tests := []struct {
		name        string
		answer      string
		wantDeleted bool
	}{
		{"confirmed", "y\n", true},
		{"declined", "n\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, conn := newRecords(t)
			seeded := testutil.Seed(t, conn, student.Student{Name: "Bob", Course: student.Math, Mobile: "1"})
			var out bytes.Buffer
			refreshed := 0
			d := &DeleteDialog{
				Records: records,
				Refresh: func(context.Context) error { refreshed++; return nil },
				Prompt:  NewPrompter(strings.NewReader(tt.answer), &out),
				ID:      seeded[0].ID,
			}

			deleted, err := d.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeleted, deleted)

			if tt.wantDeleted {
				assert.Empty(t, testutil.Dump(t, conn))
				assert.Contains(t, out.String(), DeletedMessage)
				assert.Equal(t, 1, refreshed)
			} else {
				assert.Len(t, testutil.Dump(t, conn), 1)
				assert.NotContains(t, out.String(), DeletedMessage)
				assert.Zero(t, refreshed)
			}
		})
	}
}

func TestSearchDialog_HighlightsWithoutReload(t *testing.T) {
	records, conn := newRecords(t)
	seeded := testutil.Seed(t, conn,
		student.Student{Name: "Alice", Course: student.Math, Mobile: "1"},
		student.Student{Name: "alice", Course: student.Math, Mobile: "2"},
		student.Student{Name: "Alicent", Course: student.Math, Mobile: "3"},
	)
	ctx := context.Background()
	v := NewListView(records)
	require.NoError(t, v.Refresh(ctx))

	// A row added after the last refresh must not show up in the view.
	testutil.Seed(t, conn, student.Student{Name: "Alice", Course: student.Physics, Mobile: "4"})

	d := &SearchDialog{Records: records, View: v, Prompt: NewPrompter(strings.NewReader("Alice\n"), io.Discard)}
	matches, err := d.Run(ctx)
	require.NoError(t, err)

	assert.Len(t, matches, 2)
	assert.Len(t, v.Rows(), 3)
	assert.True(t, v.IsHighlighted(seeded[0].ID))
	assert.False(t, v.IsHighlighted(seeded[1].ID))
	assert.False(t, v.IsHighlighted(seeded[2].ID))
}

func TestSession_RoundTrip(t *testing.T) {
	records, conn := newRecords(t)
	script := strings.Join([]string{
		"add", "Bob", "2", "555-1234",
		"select 1",
		"edit", "", "4", "",
		"search", "Bob",
		"select 1",
		"delete", "y",
		"quit",
	}, "\n") + "\n"

	var out bytes.Buffer
	s := NewSession(records, strings.NewReader(script), &out, nil)
	require.NoError(t, s.Run(context.Background()))

	assert.Empty(t, testutil.Dump(t, conn))
	output := out.String()
	assert.Contains(t, output, "Insert Student Data")
	assert.Contains(t, output, "Update Student Data")
	assert.Contains(t, output, "Physics")
	assert.Contains(t, output, "1 match(es).")
	assert.Contains(t, output, DeletedMessage)
}

func TestSession_EditWithoutSelection(t *testing.T) {
	records, conn := newRecords(t)
	testutil.Seed(t, conn, student.Student{Name: "Bob", Course: student.Math, Mobile: "1"})

	var out bytes.Buffer
	s := NewSession(records, strings.NewReader("edit\ndelete\n"), &out, nil)
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, 2, strings.Count(out.String(), "Select a row first"))
	assert.Len(t, testutil.Dump(t, conn), 1)
}

func TestSession_UnknownAndHelp(t *testing.T) {
	records, _ := newRecords(t)

	var out bytes.Buffer
	s := NewSession(records, strings.NewReader("frobnicate\nhelp\nselect x\nselect 5\n"), &out, nil)
	require.NoError(t, s.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, `Unknown command "frobnicate"`)
	assert.Contains(t, output, "select <row>")
	assert.Contains(t, output, `Invalid row "x"`)
	assert.Contains(t, output, "out of range")
}

func TestSession_EOFInsideDialog(t *testing.T) {
	records, conn := newRecords(t)

	s := NewSession(records, strings.NewReader("add\nBob\n"), io.Discard, nil)
	require.NoError(t, s.Run(context.Background()))
	assert.Empty(t, testutil.Dump(t, conn))
}

func TestSession_StoreErrorEndsSession(t *testing.T) {
	records := roster.NewController(testutil.NewEmptyStore(t), nil)

	s := NewSession(records, strings.NewReader("list\n"), io.Discard, nil)
	err := s.Run(context.Background())
	require.Error(t, err)
	assert.True(t, store.IsNoSuchTable(err))
}
