package account

import (
	"context"
	"database/sql"
	"fmt"

	"fitcoach/internal/adapters/storage"
	domain "fitcoach/internal/domain/account"
)

const userColumns = "id, nombre, email, password_hash, role, estado, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new user store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a user of any role by ID.
// PRE: id is non-empty
// POST: Returns the user or a wrapped sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanOne(row.Scan)
}

// GetByEmail retrieves a user of any role by normalised email.
// PRE: email is already normalised
// POST: Returns the user or a wrapped sql.ErrNoRows
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanOne(row.Scan)
}

// Insert persists a new user.
// PRE: u has been validated and carries a password hash
// POST: Row inserted, or domain.ErrDuplicateEmail if the email is taken
func (s *SQLiteStore) Insert(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Estado, storage.FormatTime(u.CreatedAt),
	)
	if storage.IsUniqueViolation(err) {
		return domain.ErrDuplicateEmail
	}
	return err
}

// CountAdmins returns the number of admin users.
func (s *SQLiteStore) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&n)
	return n, err
}

// GetClient retrieves a cliente by ID.
// PRE: id is non-empty
// POST: Returns the user, or a wrapped sql.ErrNoRows for unknown or non-cliente ids
func (s *SQLiteStore) GetClient(ctx context.Context, id string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ? AND role = 'cliente'", id)
	return scanOne(row.Scan)
}

// ListClients returns every cliente, newest first.
func (s *SQLiteStore) ListClients(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users WHERE role = 'cliente' ORDER BY created_at DESC, nombre")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateClient overwrites name, email and estado of a cliente.
// PRE: u has been validated
// POST: Row updated; domain.ErrDuplicateEmail on collision; wrapped sql.ErrNoRows if out of scope
func (s *SQLiteStore) UpdateClient(ctx context.Context, u domain.User) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET nombre = ?, email = ?, estado = ? WHERE id = ? AND role = 'cliente'",
		u.Name, u.Email, u.Estado, u.ID,
	)
	if storage.IsUniqueViolation(err) {
		return domain.ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	return requireRow(res, u.ID)
}

// SetClientEstado sets the estado of a cliente. Setting the current value succeeds.
// PRE: estado is a valid estado
// POST: Row updated or a wrapped sql.ErrNoRows if out of scope
func (s *SQLiteStore) SetClientEstado(ctx context.Context, id, estado string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET estado = ? WHERE id = ? AND role = 'cliente'", estado, id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// DeleteClient removes a cliente; dependent rows go with it via ON DELETE CASCADE.
// PRE: id is non-empty
// POST: Row removed or a wrapped sql.ErrNoRows if out of scope
func (s *SQLiteStore) DeleteClient(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ? AND role = 'cliente'", id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("client %s not found: %w", id, sql.ErrNoRows)
	}
	return nil
}

func scanOne(scan func(dest ...any) error) (domain.User, error) {
	u, err := scanUser(scan)
	if err == sql.ErrNoRows {
		return domain.User{}, fmt.Errorf("user not found: %w", err)
	}
	return u, err
}

// scanUser extracts a User from a row scanner function.
func scanUser(scan func(dest ...any) error) (domain.User, error) {
	var u domain.User
	var createdAt string
	if err := scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Estado, &createdAt); err != nil {
		return domain.User{}, err
	}
	u.CreatedAt, _ = storage.ParseTime(createdAt)
	return u, nil
}
