package progress

import (
	"context"

	domain "fitcoach/internal/domain/progress"
)

// Store persists progress notes. Rows are append-only.
type Store interface {
	Insert(ctx context.Context, n domain.Note) error
	ListByUserID(ctx context.Context, userID string) ([]domain.Note, error)
}

var _ Store = (*SQLiteStore)(nil)
