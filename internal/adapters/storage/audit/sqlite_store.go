package audit

import (
	"context"
	"strings"

	"fitcoach/internal/adapters/storage"
	domain "fitcoach/internal/domain/audit"
)

const eventColumns = "id, timestamp, category, action, severity, actor_id, actor_email, actor_role, resource_id, resource_type, description"

// SQLiteStore implements the audit Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an audit event.
// PRE: event has an ID and timestamp
// POST: Event is persisted
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO audit_event ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, storage.FormatTime(e.Timestamp), string(e.Category), string(e.Action), string(e.Severity),
		e.ActorID, e.ActorEmail, e.ActorRole, e.ResourceID, e.ResourceType, e.Description)
	return err
}

// List returns audit events matching filter, newest first.
// PRE: limit > 0
// POST: Returns at most limit events
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error) {
	var where []string
	var args []any
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.ActorID != "" {
		where = append(where, "actor_id = ?")
		args = append(args, filter.ActorID)
	}
	if filter.ResourceID != "" {
		where = append(where, "resource_id = ?")
		args = append(args, filter.ResourceID)
	}

	var q strings.Builder
	q.WriteString("SELECT " + eventColumns + " FROM audit_event")
	if len(where) > 0 {
		q.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	q.WriteString(" ORDER BY timestamp DESC LIMIT ?")
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Category, &e.Action, &e.Severity, &e.ActorID, &e.ActorEmail,
			&e.ActorRole, &e.ResourceID, &e.ResourceType, &e.Description); err != nil {
			return nil, err
		}
		e.Timestamp, _ = storage.ParseTime(ts)
		events = append(events, e)
	}
	return events, rows.Err()
}
