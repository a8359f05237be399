// Package roster issues the five record operations against the students table.
//
// Every operation is independently scoped: it opens a handle through the
// store.Connector, executes exactly one parameterized statement, commits if
// it mutated anything, and closes the handle before returning. There is no
// shared transaction between operations and no retry.
//
// Update and Delete that match no row succeed without effect.
package roster

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/ltuala/student-management/internal/store"
	"github.com/ltuala/student-management/internal/student"
)

// Records is the data-access surface the UI depends on.
type Records interface {
	List(ctx context.Context) ([]student.Student, error)
	Insert(ctx context.Context, name, course, mobile string) (int64, error)
	Update(ctx context.Context, s student.Student) error
	Delete(ctx context.Context, id int64) error
	FindByName(ctx context.Context, name string) ([]student.Student, error)
}

// Controller implements Records over a store.Connector.
type Controller struct {
	conn   *store.Connector
	logger *slog.Logger
}

var _ Records = (*Controller)(nil)

// NewController returns a Controller. A nil logger discards output.
func NewController(conn *store.Connector, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{conn: conn, logger: logger}
}

// List returns every row in the store's natural order.
// Returns an empty slice (not nil) if the table is empty.
func (c *Controller) List(ctx context.Context) ([]student.Student, error) {
	var students []student.Student
	err := c.conn.WithConn(ctx, func(db *sql.DB) error {
		var err error
		students, err = queryStudents(ctx, db, `
			SELECT id, name, course, mobile
			FROM students
		`)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	c.logger.DebugContext(ctx, "listed students", "op", "list", "rows", len(students))
	return students, nil
}

// Insert stores a new record and returns the id the store assigned.
func (c *Controller) Insert(ctx context.Context, name, course, mobile string) (int64, error) {
	var id int64
	err := c.conn.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"INSERT INTO students (name, course, mobile) VALUES (?, ?, ?)",
			name, course, mobile,
		)
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("insert student: %w", err)
	}

	c.logger.DebugContext(ctx, "inserted student", "op", "insert", "id", id)
	return id, nil
}

// Update overwrites name, course and mobile of the row with s.ID.
// An id with no matching row is a silent no-op.
func (c *Controller) Update(ctx context.Context, s student.Student) error {
	rows, err := c.exec(ctx,
		"UPDATE students SET name = ?, course = ?, mobile = ? WHERE id = ?",
		s.Name, s.Course, s.Mobile, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update student %d: %w", s.ID, err)
	}

	c.logger.DebugContext(ctx, "updated student", "op", "update", "id", s.ID, "rows", rows)
	return nil
}

// Delete removes the row with id. An id with no matching row is a silent no-op.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	rows, err := c.exec(ctx, "DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete student %d: %w", id, err)
	}

	c.logger.DebugContext(ctx, "deleted student", "op", "delete", "id", id, "rows", rows)
	return nil
}

// FindByName returns the rows whose name equals name exactly.
// Matching is case-sensitive with no partial matching.
func (c *Controller) FindByName(ctx context.Context, name string) ([]student.Student, error) {
	var students []student.Student
	err := c.conn.WithConn(ctx, func(db *sql.DB) error {
		var err error
		students, err = queryStudents(ctx, db, `
			SELECT id, name, course, mobile
			FROM students
			WHERE name = ?
		`, name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("find students: %w", err)
	}

	c.logger.DebugContext(ctx, "found students", "op", "find", "rows", len(students))
	return students, nil
}

// exec runs one mutating statement in its own transaction and reports the
// number of rows it touched.
func (c *Controller) exec(ctx context.Context, query string, args ...any) (int64, error) {
	var rows int64
	err := c.conn.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		rows, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		return nil
	})
	return rows, err
}

func queryStudents(ctx context.Context, db *sql.DB, query string, args ...any) ([]student.Student, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []student.Student{}
	for rows.Next() {
		var (
			s      student.Student
			name   sql.NullString
			course sql.NullString
			mobile sql.NullString
		)
		if err := rows.Scan(&s.ID, &name, &course, &mobile); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		s.Name = name.String
		s.Course = course.String
		s.Mobile = mobile.String
		students = append(students, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}

	return students, nil
}
