package projections

import (
	"context"
	"database/sql"
	"errors"

	domainAccount "fitcoach/internal/domain/account"
	domainMeasurement "fitcoach/internal/domain/measurement"
	domainPlan "fitcoach/internal/domain/plan"
	domainProgress "fitcoach/internal/domain/progress"
)

// GetClientRecordQuery carries query parameters.
type GetClientRecordQuery struct {
	ClientID string
}

// MeasurementRow is a measurement with its derived BMI.
type MeasurementRow struct {
	domainMeasurement.Measurement
	BMI         float64
	HasBMI      bool
	BMICategory string
}

// GetClientRecordResult is everything stored for one cliente. It backs both
// the cliente's own panel and the admin detail page.
type GetClientRecordResult struct {
	Client       domainAccount.User
	Diet         *domainPlan.Plan // nil until an admin saves one
	Training     *domainPlan.Plan
	Measurements []MeasurementRow // newest first
	Notes        []domainProgress.Note
}

// GetClientRecordDeps holds dependencies for GetClientRecord.
type GetClientRecordDeps struct {
	ClientStore      ClientStore
	DietStore        PlanStore
	TrainingStore    PlanStore
	MeasurementStore MeasurementStore
	ProgressStore    ProgressStore
}

// QueryGetClientRecord retrieves a cliente with plans, measurements and notes.
// PRE: ClientID is non-empty
// POST: Returns the full record, or a wrapped sql.ErrNoRows for unknown or non-cliente ids
func QueryGetClientRecord(ctx context.Context, query GetClientRecordQuery, deps GetClientRecordDeps) (GetClientRecordResult, error) {
	client, err := deps.ClientStore.GetClient(ctx, query.ClientID)
	if err != nil {
		return GetClientRecordResult{}, err
	}
	result := GetClientRecordResult{Client: client}

	if result.Diet, err = optionalPlan(ctx, deps.DietStore, client.ID); err != nil {
		return GetClientRecordResult{}, err
	}
	if result.Training, err = optionalPlan(ctx, deps.TrainingStore, client.ID); err != nil {
		return GetClientRecordResult{}, err
	}

	measurements, err := deps.MeasurementStore.ListByUserID(ctx, client.ID)
	if err != nil {
		return GetClientRecordResult{}, err
	}
	result.Measurements = make([]MeasurementRow, 0, len(measurements))
	for _, m := range measurements {
		row := MeasurementRow{Measurement: m}
		if bmi, ok := m.BMI(); ok {
			row.BMI, row.HasBMI = bmi, true
			row.BMICategory = domainMeasurement.BMICategory(bmi)
		}
		result.Measurements = append(result.Measurements, row)
	}

	if result.Notes, err = deps.ProgressStore.ListByUserID(ctx, client.ID); err != nil {
		return GetClientRecordResult{}, err
	}
	return result, nil
}

func optionalPlan(ctx context.Context, store PlanStore, userID string) (*domainPlan.Plan, error) {
	p, err := store.GetByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
