package store

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrStoreUnreachable means the dataset file is missing, unreadable or not
	// a SQLite database.
	ErrStoreUnreachable = errors.New("dataset unreachable")

	// ErrSchemaMismatch means the dataset lacks a table or column the API reads.
	ErrSchemaMismatch = errors.New("dataset schema mismatch")
)

// IsTransient reports whether err is a SQLite busy/locked condition that is
// worth retrying on a fresh connection.
func IsTransient(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}
