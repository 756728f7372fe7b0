package measurement

import (
	"context"
	"database/sql"

	"fitcoach/internal/adapters/storage"
	domain "fitcoach/internal/domain/measurement"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new measurement store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Insert appends a measurement. Absent readings are stored as NULL.
// PRE: m has been validated
// POST: Row inserted
func (s *SQLiteStore) Insert(ctx context.Context, m domain.Measurement) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO medidas (id, user_id, peso, altura, cintura, grasa, origen, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, nullable(m.Weight), nullable(m.Height), nullable(m.Waist), nullable(m.BodyFat),
		m.Source, storage.FormatTime(m.CreatedAt),
	)
	return err
}

// ListByUserID returns a user's measurements, newest first.
// PRE: userID is non-empty
// POST: Returns zero or more measurements
func (s *SQLiteStore) ListByUserID(ctx context.Context, userID string) ([]domain.Measurement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, peso, altura, cintura, grasa, origen, created_at
		 FROM medidas WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Measurement
	for rows.Next() {
		var m domain.Measurement
		var peso, altura, cintura, grasa sql.NullFloat64
		var createdAt string
		if err := rows.Scan(&m.ID, &m.UserID, &peso, &altura, &cintura, &grasa, &m.Source, &createdAt); err != nil {
			return nil, err
		}
		m.Weight = reading(peso)
		m.Height = reading(altura)
		m.Waist = reading(cintura)
		m.BodyFat = reading(grasa)
		m.CreatedAt, _ = storage.ParseTime(createdAt)
		list = append(list, m)
	}
	return list, rows.Err()
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func reading(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
