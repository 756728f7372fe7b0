package projections

import (
	"context"

	domainAccount "fitcoach/internal/domain/account"
	domainMeasurement "fitcoach/internal/domain/measurement"
	domainPlan "fitcoach/internal/domain/plan"
	domainProgress "fitcoach/internal/domain/progress"
)

// ClientStore interface for cliente queries.
type ClientStore interface {
	GetClient(ctx context.Context, id string) (domainAccount.User, error)
	ListClients(ctx context.Context) ([]domainAccount.User, error)
}

// PlanStore interface for diet or training plan queries.
type PlanStore interface {
	GetByUserID(ctx context.Context, userID string) (domainPlan.Plan, error)
}

// MeasurementStore interface for measurement queries.
type MeasurementStore interface {
	ListByUserID(ctx context.Context, userID string) ([]domainMeasurement.Measurement, error)
}

// ProgressStore interface for progress note queries.
type ProgressStore interface {
	ListByUserID(ctx context.Context, userID string) ([]domainProgress.Note, error)
}
