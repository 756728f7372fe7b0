package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// TimeLayout is the text format used for every timestamp column. The fraction
// is fixed-width so that text ordering matches time ordering.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t in TimeLayout, normalised to UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a timestamp column. Older rows written by SQLite defaults
// use the "YYYY-MM-DD HH:MM:SS" form.
func ParseTime(s string) (time.Time, error) {
	for _, f := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}

// migration is one forward-only schema step.
type migration struct {
	version     int
	description string
	apply       func(tx *sql.Tx) error
}

var migrations = []migration{
	{1, "baseline: users, dietas, entrenamientos, medidas, progresos", migrateBaseline},
	{2, "audit_event", migrateAudit},
}

// Open opens the SQLite file at path with WAL, busy timeout and foreign keys
// enabled on every pooled connection.
// PRE: path is a writable file path
// POST: returns a pinged *sql.DB
func Open(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, nil
}

// LatestSchemaVersion returns the version reached after all migrations.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, or 0 for an empty database.
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// PRE: db is a valid database connection
// POST: schema is at LatestSchemaVersion(); running it again is a no-op
func MigrateDB(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if err := m.apply(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version, description) VALUES (?, ?)", m.version, m.description); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		slog.Info("schema_migrated", "version", m.version, "description", m.description)
	}
	return nil
}

func migrateBaseline(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		nombre TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('admin', 'cliente')),
		estado TEXT NOT NULL DEFAULT 'pendiente' CHECK (estado IN ('pendiente', 'activo')),
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dietas (
		user_id TEXT PRIMARY KEY,
		contenido TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS entrenamientos (
		user_id TEXT PRIMARY KEY,
		contenido TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS medidas (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		peso REAL,
		altura REAL,
		cintura REAL,
		grasa REAL,
		origen TEXT NOT NULL CHECK (origen IN ('cliente', 'admin')),
		created_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_medidas_user ON medidas(user_id, created_at);

	CREATE TABLE IF NOT EXISTS progresos (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		nota TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_progresos_user ON progresos(user_id, created_at);
	`)
	return err
}

func migrateAudit(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS audit_event (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		severity TEXT NOT NULL,
		actor_id TEXT NOT NULL DEFAULT '',
		actor_email TEXT NOT NULL DEFAULT '',
		actor_role TEXT NOT NULL DEFAULT '',
		resource_id TEXT NOT NULL DEFAULT '',
		resource_type TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_event(timestamp);
	`)
	return err
}

// IsUniqueViolation reports whether err is a SQLite UNIQUE or PRIMARY KEY constraint failure.
func IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
