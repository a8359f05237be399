package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// TableStudents is the only table the roster reads and writes.
const TableStudents = "students"

// Bootstrap creates the students table if it does not exist.
// This function is idempotent.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errNilHandle
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Bootstrap opens a handle, applies the schema and closes it again.
func (c *Connector) Bootstrap(ctx context.Context) error {
	return c.WithConn(ctx, func(db *sql.DB) error {
		return Bootstrap(ctx, db)
	})
}

// TableName looks name up in sqlite_master and returns it.
// Returns a wrapped sql.ErrNoRows when the table does not exist.
func TableName(ctx context.Context, db *sql.DB, name string) (string, error) {
	if db == nil {
		return "", errNilHandle
	}

	var found string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
		name,
	).Scan(&found)
	if err != nil {
		return "", fmt.Errorf("lookup table %q: %w", name, err)
	}
	return found, nil
}
