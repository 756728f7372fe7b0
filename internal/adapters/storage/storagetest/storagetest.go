// Package storagetest opens migrated throwaway databases for store tests.
package storagetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"fitcoach/internal/adapters/storage"
)

// Open returns a migrated database in a per-test temp file.
// PRE: t is a running test
// POST: the database is closed when the test ends
func Open(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "fitcoach.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
