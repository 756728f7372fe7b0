package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fitcoach/internal/domain/account"
	"fitcoach/internal/domain/audit"
	"fitcoach/internal/domain/measurement"
	"fitcoach/internal/domain/progress"
)

// MeasurementStoreForSubmission defines the store interface needed to record measurements.
type MeasurementStoreForSubmission interface {
	Insert(ctx context.Context, m measurement.Measurement) error
}

// ProgressStoreForSubmission defines the store interface needed to record notes.
type ProgressStoreForSubmission interface {
	Insert(ctx context.Context, n progress.Note) error
}

// SubmissionForm is one "medidas" form post: a note or a set of readings.
type SubmissionForm struct {
	Note        string
	Measurement measurement.Form
}

// SubmissionResult reports what a submission recorded. Exactly one field is set.
type SubmissionResult struct {
	Note        *progress.Note
	Measurement *measurement.Measurement
}

// SubmissionDeps holds dependencies for the submission orchestrators.
type SubmissionDeps struct {
	MeasurementStore MeasurementStoreForSubmission
	ProgressStore    ProgressStoreForSubmission
	GenerateID       func() string
	Now              func() time.Time
}

// AdminSubmissionInput carries input for AdminSubmission.
type AdminSubmissionInput struct {
	Actor    account.Identity
	ClientID string
	Form     SubmissionForm
}

// AdminSubmissionDeps holds dependencies for AdminSubmission.
type AdminSubmissionDeps struct {
	SubmissionDeps
	AccountStore ClientLookup
	Audit        AuditRecorder
}

// ExecuteClientSubmission records a cliente's own note or measurement.
// PRE: caller is a signed-in cliente
// POST: one progress note or one measurement (source cliente) is stored
// INVARIANT: rejected with account.ErrNotActive unless caller is activo
func ExecuteClientSubmission(ctx context.Context, caller account.Identity, form SubmissionForm, deps SubmissionDeps) (SubmissionResult, error) {
	if !caller.IsActive() {
		slog.Info("account_event", "event", "submission_blocked", "user_id", caller.UserID, "reason", "not_active")
		return SubmissionResult{}, account.ErrNotActive
	}
	return submit(ctx, caller.UserID, measurement.SourceCliente, form, deps)
}

// ExecuteAdminSubmission records a note or measurement for a client, on an admin's behalf.
// PRE: Actor is an admin
// POST: one note or one measurement (source admin) is stored; ErrNotFound if out of scope
// INVARIANT: not gated by the client's estado
func ExecuteAdminSubmission(ctx context.Context, input AdminSubmissionInput, deps AdminSubmissionDeps) (SubmissionResult, error) {
	u, err := loadClient(ctx, deps.AccountStore, input.ClientID)
	if err != nil {
		return SubmissionResult{}, err
	}
	res, err := submit(ctx, u.ID, measurement.SourceAdmin, input.Form, deps.SubmissionDeps)
	if err != nil {
		return SubmissionResult{}, err
	}
	category := audit.CategoryMeasurement
	if res.Note != nil {
		category = audit.CategoryProgress
	}
	record(ctx, deps.Audit, input.Actor, category, audit.ActionCreate, func(e audit.Event) audit.Event {
		return e.WithResource("user", u.ID)
	})
	return res, nil
}

// submit stores a note when one is given, otherwise a measurement.
// A non-empty note short-circuits: readings on the same form are ignored.
func submit(ctx context.Context, userID, source string, form SubmissionForm, deps SubmissionDeps) (SubmissionResult, error) {
	if strings.TrimSpace(form.Note) != "" {
		n, err := addNote(ctx, userID, form.Note, deps.ProgressStore, deps.GenerateID, deps.Now)
		if err != nil {
			return SubmissionResult{}, err
		}
		return SubmissionResult{Note: &n}, nil
	}

	m, err := measurement.Parse(form.Measurement, userID, source, deps.GenerateID(), deps.Now())
	if err != nil {
		return SubmissionResult{}, err
	}
	if err := deps.MeasurementStore.Insert(ctx, m); err != nil {
		return SubmissionResult{}, err
	}
	slog.Info("progress_event", "event", "measurement_recorded", "user_id", userID, "source", source)
	return SubmissionResult{Measurement: &m}, nil
}

func addNote(ctx context.Context, userID, content string, store ProgressStoreForSubmission, generateID func() string, now func() time.Time) (progress.Note, error) {
	n := progress.Note{
		ID:        generateID(),
		UserID:    userID,
		Content:   strings.TrimSpace(content),
		CreatedAt: now(),
	}
	if err := n.Validate(); err != nil {
		return progress.Note{}, err
	}
	if err := store.Insert(ctx, n); err != nil {
		return progress.Note{}, err
	}
	slog.Info("progress_event", "event", "note_recorded", "user_id", userID)
	return n, nil
}
