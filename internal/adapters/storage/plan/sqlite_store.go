package plan

import (
	"context"
	"database/sql"
	"fmt"

	"fitcoach/internal/adapters/storage"
	domain "fitcoach/internal/domain/plan"
)

// tables maps each plan kind to its table. Table names never come from input.
var tables = map[domain.Kind]string{
	domain.KindDiet:     "dietas",
	domain.KindTraining: "entrenamientos",
}

// SQLiteStore implements Store for one plan table.
type SQLiteStore struct {
	db    storage.SQLDB
	kind  domain.Kind
	table string
}

// NewSQLiteStore creates a store for the given plan kind.
// PRE: kind is valid
func NewSQLiteStore(db storage.SQLDB, kind domain.Kind) *SQLiteStore {
	table, ok := tables[kind]
	if !ok {
		panic(fmt.Sprintf("plan: unknown kind %q", kind))
	}
	return &SQLiteStore{db: db, kind: kind, table: table}
}

// NewDietSQLiteStore creates the store backing the dietas table.
func NewDietSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return NewSQLiteStore(db, domain.KindDiet)
}

// NewTrainingSQLiteStore creates the store backing the entrenamientos table.
func NewTrainingSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return NewSQLiteStore(db, domain.KindTraining)
}

// Replace inserts or overwrites the single plan row keyed by user id.
// PRE: p has been validated
// POST: one row for p.UserID with the new content and timestamp
func (s *SQLiteStore) Replace(ctx context.Context, p domain.Plan) error {
	if p.Kind != s.kind {
		return fmt.Errorf("plan kind %q written to %s store", p.Kind, s.kind)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (user_id, contenido, updated_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(user_id) DO UPDATE SET contenido = excluded.contenido, updated_at = excluded.updated_at",
		s.table,
	)
	_, err := s.db.ExecContext(ctx, query, p.UserID, p.Content, storage.FormatTime(p.UpdatedAt))
	return err
}

// GetByUserID returns the user's plan.
// PRE: userID is non-empty
// POST: Returns the plan or a wrapped sql.ErrNoRows when none has been saved
func (s *SQLiteStore) GetByUserID(ctx context.Context, userID string) (domain.Plan, error) {
	query := fmt.Sprintf("SELECT user_id, contenido, updated_at FROM %s WHERE user_id = ?", s.table)
	p := domain.Plan{Kind: s.kind}
	var updatedAt string
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.Content, &updatedAt)
	if err == sql.ErrNoRows {
		return domain.Plan{}, fmt.Errorf("%s plan not found: %w", s.kind, err)
	}
	if err != nil {
		return domain.Plan{}, err
	}
	p.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return p, nil
}
