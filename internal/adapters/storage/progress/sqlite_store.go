package progress

import (
	"context"

	"fitcoach/internal/adapters/storage"
	domain "fitcoach/internal/domain/progress"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new progress note store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Insert appends a progress note.
// PRE: n has been validated
// POST: Row inserted
func (s *SQLiteStore) Insert(ctx context.Context, n domain.Note) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO progresos (id, user_id, nota, created_at) VALUES (?, ?, ?, ?)",
		n.ID, n.UserID, n.Content, storage.FormatTime(n.CreatedAt),
	)
	return err
}

// ListByUserID returns a user's notes, newest first.
func (s *SQLiteStore) ListByUserID(ctx context.Context, userID string) ([]domain.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, nota, created_at FROM progresos WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		var createdAt string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &createdAt); err != nil {
			return nil, err
		}
		n.CreatedAt, _ = storage.ParseTime(createdAt)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
