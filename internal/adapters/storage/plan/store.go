package plan

import (
	"context"

	domain "fitcoach/internal/domain/plan"
)

// Store persists one plan kind (diet or training). Each user has at most one row.
type Store interface {
	// Replace inserts the plan or overwrites the existing row for its user.
	// PRE: p has been validated and p.Kind matches the store
	// POST: exactly one row exists for p.UserID holding p.Content and p.UpdatedAt
	Replace(ctx context.Context, p domain.Plan) error

	// GetByUserID returns the user's plan or a wrapped sql.ErrNoRows.
	GetByUserID(ctx context.Context, userID string) (domain.Plan, error)
}

var _ Store = (*SQLiteStore)(nil)
