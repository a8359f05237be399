package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewConnector_DefaultPath(t *testing.T) {
	for _, path := range []string{"", "   "} {
		c := NewConnector(path)
		if c.Path() != DefaultPath {
			t.Errorf("NewConnector(%q).Path() = %q, want %q", path, c.Path(), DefaultPath)
		}
		if c.Driver() != DriverCGO {
			t.Errorf("default driver = %q, want %q", c.Driver(), DriverCGO)
		}
	}
}

func TestNewConnector_ExplicitPath(t *testing.T) {
	c := NewConnector("./data/../roster.db")
	if c.Path() != "roster.db" {
		t.Errorf("Path() = %q, want cleaned %q", c.Path(), "roster.db")
	}
}

func TestNewConnector_WithDriver(t *testing.T) {
	c := NewConnector("x.db", WithDriver(DriverPure))
	if c.Driver() != DriverPure {
		t.Errorf("Driver() = %q, want %q", c.Driver(), DriverPure)
	}

	c = NewConnector("x.db", WithDriver(""))
	if c.Driver() != DriverCGO {
		t.Errorf("empty WithDriver should keep default, got %q", c.Driver())
	}
}

func TestConnect_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := NewConnector(path).Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Errorf("handle not usable: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestConnect_PureDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := NewConnector(path, WithDriver(DriverPure)).Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer db.Close()

	if err := Bootstrap(context.Background(), db); err != nil {
		t.Fatalf("Bootstrap() failed: %v", err)
	}
}

func TestConnect_InvalidPath(t *testing.T) {
	_, err := NewConnector("/nonexistent/dir/test.db").Connect(context.Background())
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := NewConnector("x.db", WithDriver("postgres")).Connect(context.Background())
	if err == nil {
		t.Fatal("expected error for unsupported driver, got nil")
	}
}

func TestConnect_DoesNotCreateSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fresh.db")

	err := NewConnector(path).WithConn(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, "SELECT * FROM students")
		return err
	})
	if err == nil {
		t.Fatal("querying a fresh file should fail without the table")
	}
	if !IsNoSuchTable(err) {
		t.Errorf("expected no such table error, got %v", err)
	}
}

func TestBootstrap_TableExists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	c := NewConnector(path)

	db, err := c.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer db.Close()

	if err := Bootstrap(ctx, db); err != nil {
		t.Fatalf("Bootstrap() failed: %v", err)
	}

	name, err := TableName(ctx, db, TableStudents)
	if err != nil {
		t.Fatalf("TableName() failed: %v", err)
	}
	if name != "students" {
		t.Errorf("TableName() = %q, want %q", name, "students")
	}
}

func TestBootstrap_Idempotent(t *testing.T) {
	ctx := context.Background()
	c := NewConnector(filepath.Join(t.TempDir(), "test.db"))

	for i := 0; i < 3; i++ {
		if err := c.Bootstrap(ctx); err != nil {
			t.Fatalf("Bootstrap() iteration %d failed: %v", i, err)
		}
	}
}

func TestBootstrap_NilHandle(t *testing.T) {
	if err := Bootstrap(context.Background(), nil); err == nil {
		t.Error("Bootstrap(nil) should error")
	}
}

func TestTableName_Missing(t *testing.T) {
	ctx := context.Background()
	c := NewConnector(filepath.Join(t.TempDir(), "test.db"))

	err := c.WithConn(ctx, func(db *sql.DB) error {
		_, err := TableName(ctx, db, TableStudents)
		return err
	})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestWithConn_ClosesOnError(t *testing.T) {
	ctx := context.Background()
	c := NewConnector(filepath.Join(t.TempDir(), "test.db"))
	sentinel := errors.New("boom")

	var handle *sql.DB
	err := c.WithConn(ctx, func(db *sql.DB) error {
		handle = db
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("WithConn() error = %v, want %v", err, sentinel)
	}

	// A closed handle refuses new work.
	if err := handle.Ping(); err == nil {
		t.Error("handle should be closed after WithConn returns")
	}
}

func TestWithConn_ClosesOnSuccess(t *testing.T) {
	ctx := context.Background()
	c := NewConnector(filepath.Join(t.TempDir(), "test.db"))

	var handle *sql.DB
	if err := c.WithConn(ctx, func(db *sql.DB) error {
		handle = db
		return nil
	}); err != nil {
		t.Fatalf("WithConn() failed: %v", err)
	}

	if err := handle.Ping(); err == nil {
		t.Error("handle should be closed after WithConn returns")
	}
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	c := NewConnector(filepath.Join(t.TempDir(), "test.db"))
	if err := c.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap() failed: %v", err)
	}

	err := c.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO students (name, course, mobile) VALUES (?, ?, ?)", "Ann", "Math", "1")
		return err
	})
	if err != nil {
		t.Fatalf("WithTx() failed: %v", err)
	}

	if got := countRows(t, c); got != 1 {
		t.Errorf("rows = %d, want 1", got)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	c := NewConnector(filepath.Join(t.TempDir(), "test.db"))
	if err := c.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap() failed: %v", err)
	}
	sentinel := errors.New("abort")

	err := c.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO students (name, course, mobile) VALUES (?, ?, ?)", "Ann", "Math", "1"); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("WithTx() error = %v, want %v", err, sentinel)
	}

	if got := countRows(t, c); got != 0 {
		t.Errorf("rows = %d, want 0 after rollback", got)
	}
}

func TestIsNoSuchTable(t *testing.T) {
	if IsNoSuchTable(nil) {
		t.Error("nil error is not a missing table")
	}
	if !IsNoSuchTable(errors.New("query: no such table: students")) {
		t.Error("expected match on sqlite message")
	}
	if IsNoSuchTable(errors.New("database is locked")) {
		t.Error("unexpected match")
	}
}

func countRows(t *testing.T, c *Connector) int {
	t.Helper()
	var n int
	err := c.WithConn(context.Background(), func(db *sql.DB) error {
		return db.QueryRow("SELECT COUNT(*) FROM students").Scan(&n)
	})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}
