//go:build cgo

package storage

import (
	"context"
	"database/sql"
	"errors"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/mattn/go-sqlite3"
)

// NewSQLite opens (creating if needed) the word database at path.
func NewSQLite(path string) (*SQLite, error) {
	sqlite_vec.Auto()
	return openSQLite("sqlite3", path)
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// extensionVersion reports the loaded sqlite-vec version, or "" if unavailable.
func extensionVersion(ctx context.Context, conn *sql.DB) string {
	var v string
	if err := conn.QueryRowContext(ctx, `SELECT vec_version()`).Scan(&v); err != nil {
		return ""
	}
	return "sqlite-vec " + v
}
