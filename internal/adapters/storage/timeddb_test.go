package storage

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"fitcoach/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestTimedDB_RecordsEachStatement verifies every call reaches the collector.
func TestTimedDB_RecordsEachStatement(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, 0)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, "SELECT id, val FROM test")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()
	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if val != "hello" {
		t.Errorf("val = %q, want hello", val)
	}

	if got := collector.TotalRecorded(); got != 3 {
		t.Errorf("TotalRecorded = %d, want 3", got)
	}
	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	labels := map[string]bool{}
	for _, q := range snap.SlowestQueries {
		labels[q.Path] = true
	}
	if !labels["INSERT test"] || !labels["SELECT test"] {
		t.Errorf("expected INSERT test and SELECT test labels, got %v", labels)
	}
}

// TestTimedDB_NilCollector verifies TimedDB works without a collector.
func TestTimedDB_NilCollector(t *testing.T) {
	db := openTimedTestDB(t)
	tdb := NewTimedDB(db, nil, time.Second)
	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO test (id, val) VALUES ('a', 'b')"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
}

// TestTimedDB_ErrorPassthrough verifies driver errors are returned unchanged.
func TestTimedDB_ErrorPassthrough(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(10)
	tdb := NewTimedDB(db, collector, 0)

	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO missing_table VALUES (1)"); err == nil {
		t.Error("expected error for missing table")
	}
	if _, err := tdb.QueryContext(context.Background(), "SELECT * FROM missing_table"); err == nil {
		t.Error("expected error for missing table")
	}
	if collector.TotalRecorded() != 2 {
		t.Errorf("failed statements should still be timed, got %d entries", collector.TotalRecorded())
	}
}

// TestTimedDB_RawDB verifies the underlying handle is exposed.
func TestTimedDB_RawDB(t *testing.T) {
	db := openTimedTestDB(t)
	tdb := NewTimedDB(db, nil, 0)
	if tdb.RawDB() != db {
		t.Error("RawDB should return the wrapped *sql.DB")
	}
}

// TestTimedDB_Concurrent verifies concurrent use is safe.
func TestTimedDB_Concurrent(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(1000)
	tdb := NewTimedDB(db, collector, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var n int
			tdb.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM test").Scan(&n)
		}()
	}
	wg.Wait()
	if collector.TotalRecorded() != 20 {
		t.Errorf("TotalRecorded = %d, want 20", collector.TotalRecorded())
	}
}

// TestStatementLabel verifies SQL statements collapse to "VERB table".
func TestStatementLabel(t *testing.T) {
	tests := map[string]string{
		"SELECT id FROM users WHERE id = ?":                          "SELECT users",
		"select count(*) from medidas":                               "SELECT medidas",
		"INSERT INTO dietas (user_id, contenido) VALUES (?, ?)":      "INSERT dietas",
		"INSERT INTO progresos(id) VALUES (?)":                       "INSERT progresos",
		"UPDATE users SET estado = ? WHERE id = ?":                   "UPDATE users",
		"DELETE FROM users WHERE id = ?":                             "DELETE users",
		"PRAGMA foreign_keys":                                        "PRAGMA",
		"":                                                           "EMPTY",
		"\n\t SELECT nombre\n FROM\n users":                          "SELECT users",
	}
	for in, want := range tests {
		if got := StatementLabel(in); got != want {
			t.Errorf("StatementLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
