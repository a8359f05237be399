// Package store connects the roster to its SQLite database file.
//
// The store is deliberately thin: a Connector knows which file and driver to
// use and hands out short-lived handles. Nothing is pooled and nothing is
// retried. Each logical operation opens its own handle and releases it before
// returning, on success and on failure alike.
//
// # Schema
//
// The students table is expected to exist already:
//
//	students(id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, course TEXT, mobile TEXT)
//
// Connect never creates it. Bootstrap applies the embedded schema.sql and is
// only invoked explicitly (the init command, the scenario harness, tests).
//
// # Drivers
//
//   - sqlite3: github.com/mattn/go-sqlite3 (default, CGO)
//   - sqlite:  modernc.org/sqlite (pure Go)
package store
