// Package sqlite implements the sqlite3 bag storage backend: a typed
// wrapper around prepared statements plus the storage plugin built on it.
package sqlite

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // sqlite driver (pure Go)

	"github.com/sangteak601/rosbag2/internal/storage"
)

// DB owns one sqlite database handle.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens the database file at path. Read-write opens create the file
// if needed and bring the bag schema up to date; read-only opens refuse
// to create a missing file and reject writes. Pragmas are applied on
// every connection, in key order.
func Open(path string, flag storage.IOFlag, pragmas map[string]string) (*DB, error) {
	db, err := sql.Open("sqlite", buildDSN(path, flag, pragmas))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if path == ":memory:" {
		// A memory database exists only on its connection.
		db.SetMaxOpenConns(1)
	} else {
		// One connection carries an in-flight read pass; the second
		// serves statements issued while that pass is still open.
		db.SetMaxOpenConns(2)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	d := &DB{db: db, path: path}

	if flag == storage.ReadWrite {
		if err := d.Migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return d, nil
}

// buildDSN encodes the open mode and pragmas into a file: URI. A plain
// path would silently ignore mode=ro, and pragmas issued over Exec would
// only reach the one pooled connection that ran them.
func buildDSN(path string, flag storage.IOFlag, pragmas map[string]string) string {
	params := make([]string, 0, len(pragmas)+1)
	if flag == storage.ReadOnly {
		params = append(params, "mode=ro")
	}

	keys := make([]string, 0, len(pragmas))
	for k := range pragmas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		params = append(params, fmt.Sprintf("_pragma=%s(%s)", k, pragmas[k]))
	}

	if len(params) == 0 {
		return path
	}
	return "file:" + path + "?" + strings.Join(params, "&")
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// Prepare compiles query into a Statement.
func (d *DB) Prepare(query string) (*Statement, error) {
	return prepare(d.db, query)
}

// Close closes the database handle.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
