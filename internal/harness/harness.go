package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ltuala/student-management/internal/roster"
	"github.com/ltuala/student-management/internal/store"
	"github.com/ltuala/student-management/internal/student"
)

// Harness executes scenarios. The zero value uses the default driver and
// discards logs.
type Harness struct {
	Driver string
	Logger *slog.Logger
}

// Run executes scenario with a zero Harness.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return (&Harness{}).Run(ctx, scenario)
}

// Run executes a scenario in a fresh temporary database and returns the
// result. The error is non-nil only when the scenario could not be executed
// (store setup or a failing store call); failed checks are reported in
// Result.Errors.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	logger := h.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dir, err := os.MkdirTemp("", "students-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario dir: %w", err)
	}
	defer os.RemoveAll(dir)

	conn := store.NewConnector(filepath.Join(dir, "scenario.db"), store.WithDriver(h.Driver))
	if err := conn.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("failed to create scenario store: %w", err)
	}

	r := &runner{
		records: roster.NewController(conn, logger),
		logger:  logger,
		refs:    map[int]int64{},
		result:  NewResult(),
	}

	if err := r.seed(ctx, scenario.Seed); err != nil {
		return nil, fmt.Errorf("failed to seed: %w", err)
	}

	for i, step := range scenario.Steps {
		if err := r.execute(ctx, i, step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}

	final, err := r.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read final state: %w", err)
	}
	r.result.Final = final

	actx := &AssertionContext{
		Ctx:     ctx,
		Records: r.records,
		Final:   final,
		Seeded:  r.seeded,
		Refs:    r.refs,
	}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		r.result.AddError(msg)
	}

	logger.Info("scenario finished", "name", scenario.Name, "pass", r.result.Pass)
	return r.result, nil
}

// runner holds the state of one scenario execution.
type runner struct {
	records roster.Records
	logger  *slog.Logger
	seeded  []student.Student
	refs    map[int]int64 // insert step (1-based) -> assigned id
	result  *Result
}

func (r *runner) seed(ctx context.Context, rows []student.Student) error {
	for _, row := range rows {
		id, err := r.records.Insert(ctx, row.Name, row.Course, row.Mobile)
		if err != nil {
			return err
		}
		row.ID = id
		r.seeded = append(r.seeded, row)
	}
	return nil
}

func (r *runner) execute(ctx context.Context, i int, step Step) error {
	ev := TraceEvent{Op: step.Op, Args: step.Args}

	switch step.Op {
	case OpInsert:
		id, err := r.records.Insert(ctx, step.Args["name"], step.Args["course"], step.Args["mobile"])
		if err != nil {
			return err
		}
		r.refs[i+1] = id
		ev.ID = id

	case OpUpdate:
		id := r.target(step)
		current, err := r.current(ctx, id)
		if err != nil {
			return err
		}
		if err := r.records.Update(ctx, merge(current, step.Args)); err != nil {
			return err
		}
		ev.ID = id

	case OpDelete:
		id := r.target(step)
		if err := r.records.Delete(ctx, id); err != nil {
			return err
		}
		ev.ID = id

	case OpFind:
		rows, err := r.records.FindByName(ctx, step.Args["name"])
		if err != nil {
			return err
		}
		ev.Rows = rows
		r.expect(i, step, len(rows))

	case OpList:
		rows, err := r.records.List(ctx)
		if err != nil {
			return err
		}
		ev.Rows = rows
		r.expect(i, step, len(rows))

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	r.logger.Debug("step executed", "step", i+1, "op", step.Op, "id", ev.ID)
	r.result.AddTrace(ev)
	return nil
}

func (r *runner) target(step Step) int64 {
	if step.Ref != 0 {
		return r.refs[step.Ref]
	}
	return step.ID
}

// current returns the row with id, or a blank row carrying id when it does
// not exist (the update then matches nothing).
func (r *runner) current(ctx context.Context, id int64) (student.Student, error) {
	rows, err := r.records.List(ctx)
	if err != nil {
		return student.Student{}, err
	}
	for _, row := range rows {
		if row.ID == id {
			return row, nil
		}
	}
	return student.Student{ID: id}, nil
}

func (r *runner) expect(i int, step Step, got int) {
	if step.Expect == nil || step.Expect.Count == nil {
		return
	}
	if want := *step.Expect.Count; got != want {
		r.result.AddError(fmt.Sprintf("step %d (%s): expected %d row(s), got %d", i+1, step.Op, want, got))
	}
}

func merge(s student.Student, args map[string]string) student.Student {
	if v, ok := args["name"]; ok {
		s.Name = v
	}
	if v, ok := args["course"]; ok {
		s.Course = v
	}
	if v, ok := args["mobile"]; ok {
		s.Mobile = v
	}
	return s
}
