package measurement

import (
	"context"

	domain "fitcoach/internal/domain/measurement"
)

// Store persists measurements. Rows are append-only.
type Store interface {
	Insert(ctx context.Context, m domain.Measurement) error
	ListByUserID(ctx context.Context, userID string) ([]domain.Measurement, error)
}

var _ Store = (*SQLiteStore)(nil)
