//go:build !cgo

package storage

import (
	"context"
	"database/sql"
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// NewSQLite opens (creating if needed) the word database at path.
// Non-cgo builds use the pure Go driver without sqlite-vec.
func NewSQLite(path string) (*SQLite, error) {
	return openSQLite("sqlite", path)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func extensionVersion(ctx context.Context, conn *sql.DB) string {
	return ""
}
