package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"fitcoach/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQuery is the threshold above which a statement is logged at WARN.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDB wraps a *sql.DB to log slow statements and feed the perf collector.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold time.Duration
}

var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps db with timing instrumentation.
// PRE: db is a valid database connection; collector may be nil
// POST: every statement is timed; statements slower than threshold log slow_query
func NewTimedDB(db *sql.DB, collector *perf.Collector, threshold time.Duration) *TimedDB {
	if threshold <= 0 {
		threshold = DefaultSlowQuery
	}
	return &TimedDB{db: db, collector: collector, threshold: threshold}
}

// RawDB returns the underlying *sql.DB (migrations, Close).
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// ExecContext wraps sql.DB.ExecContext with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe(query, start, err)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe(query, start, err)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
// Scan errors surface later, so only latency is observed here.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(query, start, nil)
	return row
}

func (t *TimedDB) observe(query string, start time.Time, err error) {
	elapsed := time.Since(start)
	label := StatementLabel(query)
	durationMs := float64(elapsed.Microseconds()) / 1000.0

	switch {
	case err != nil:
		slog.Debug("query_failed", "statement", label, "duration_ms", durationMs, "error", err)
	case elapsed >= t.threshold:
		slog.Warn("slow_query", "statement", label, "duration_ms", durationMs)
	default:
		slog.Debug("query", "statement", label, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       label,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// StatementLabel reduces a SQL statement to "VERB table" for aggregation,
// e.g. "SELECT users" or "INSERT medidas".
func StatementLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "EMPTY"
	}
	verb := strings.ToUpper(fields[0])
	var marker string
	switch verb {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT", "REPLACE":
		marker = "INTO"
	case "UPDATE":
		if len(fields) > 1 {
			return verb + " " + trimIdent(fields[1])
		}
		return verb
	default:
		return verb
	}
	for i, f := range fields {
		if strings.EqualFold(f, marker) && i+1 < len(fields) {
			return verb + " " + trimIdent(fields[i+1])
		}
	}
	return verb
}

func trimIdent(s string) string {
	if i := strings.IndexAny(s, "( "); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(s, "`\"")
}
