// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ltuala/student-management/internal/store"
	"github.com/ltuala/student-management/internal/student"
)

// NewStore returns a connector for a fresh database file in a temporary
// directory with the students table already created.
func NewStore(t testing.TB) *store.Connector {
	t.Helper()
	c := NewEmptyStore(t)
	if err := c.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() failed: %v", err)
	}
	return c
}

// NewEmptyStore returns a connector for a database path that has no schema.
func NewEmptyStore(t testing.TB) *store.Connector {
	t.Helper()
	return store.NewConnector(filepath.Join(t.TempDir(), "test.db"))
}

// Seed inserts rows directly, bypassing the record controller, and returns
// them with their assigned ids.
func Seed(t testing.TB, c *store.Connector, rows ...student.Student) []student.Student {
	t.Helper()
	ctx := context.Background()

	seeded := make([]student.Student, 0, len(rows))
	err := c.WithConn(ctx, func(db *sql.DB) error {
		for _, r := range rows {
			res, err := db.ExecContext(ctx,
				"INSERT INTO students (name, course, mobile) VALUES (?, ?, ?)",
				r.Name, r.Course, r.Mobile,
			)
			if err != nil {
				return err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			r.ID = id
			seeded = append(seeded, r)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return seeded
}

// Dump reads every row ordered by id, bypassing the record controller.
func Dump(t testing.TB, c *store.Connector) []student.Student {
	t.Helper()
	ctx := context.Background()

	rows := []student.Student{}
	err := c.WithConn(ctx, func(db *sql.DB) error {
		rs, err := db.QueryContext(ctx, "SELECT id, name, course, mobile FROM students ORDER BY id")
		if err != nil {
			return err
		}
		defer rs.Close()
		for rs.Next() {
			var s student.Student
			if err := rs.Scan(&s.ID, &s.Name, &s.Course, &s.Mobile); err != nil {
				return err
			}
			rows = append(rows, s)
		}
		return rs.Err()
	})
	if err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	return rows
}
