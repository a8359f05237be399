package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// DefaultPath is the database file used when no path is configured.
const DefaultPath = "database.db"

// Supported database/sql driver names.
const (
	DriverCGO  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPure = "sqlite"  // modernc.org/sqlite
)

// ValidDrivers lists the accepted driver names.
var ValidDrivers = []string{DriverCGO, DriverPure}

// Connector opens handles to a single SQLite database file.
// It holds no open resources itself and is safe to copy by pointer.
type Connector struct {
	path   string
	driver string
}

// Option configures a Connector.
type Option func(*Connector)

// WithDriver selects the database/sql driver. Empty keeps the default.
func WithDriver(name string) Option {
	return func(c *Connector) {
		if name != "" {
			c.driver = name
		}
	}
}

// NewConnector returns a Connector for path, falling back to DefaultPath
// when path is blank.
func NewConnector(path string, opts ...Option) *Connector {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}
	if path != ":memory:" {
		path = filepath.Clean(path)
	}

	c := &Connector{path: path, driver: DriverCGO}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the database file path.
func (c *Connector) Path() string {
	return c.path
}

// Driver returns the database/sql driver name.
func (c *Connector) Driver() string {
	return c.driver
}

// Connect opens a live handle to the database file.
//
// The handle is limited to a single underlying connection. The caller owns it
// and must Close it. Open failures (missing directory, permissions, locked
// file) are returned wrapped, never translated.
func (c *Connector) Connect(ctx context.Context) (*sql.DB, error) {
	if !IsValidDriver(c.driver) {
		return nil, fmt.Errorf("unsupported driver %q: must be one of %v", c.driver, ValidDrivers)
	}

	db, err := sql.Open(c.driver, c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// WithConn connects, runs fn and closes the handle on every exit path.
// A close error is only reported when fn itself succeeded.
func (c *Connector) WithConn(ctx context.Context, fn func(db *sql.DB) error) (err error) {
	db, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close database: %w", closeErr)
		}
	}()

	return fn(db)
}

// WithTx runs fn inside a single transaction on a freshly opened handle.
// The transaction commits when fn returns nil and rolls back otherwise.
func (c *Connector) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return c.WithConn(ctx, func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() // No-op if committed

		if err := fn(tx); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		return nil
	})
}

// IsValidDriver reports whether name is one of ValidDrivers.
func IsValidDriver(name string) bool {
	for _, d := range ValidDrivers {
		if d == name {
			return true
		}
	}
	return false
}

// IsNoSuchTable reports whether err comes from querying a missing table.
// Both drivers surface SQLite's own message, so matching on it covers both.
func IsNoSuchTable(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "no such table")
}

var errNilHandle = errors.New("nil database handle")
