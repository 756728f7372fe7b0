package orchestrators

import (
	"context"
	"time"

	"fitcoach/internal/domain/account"
	"fitcoach/internal/domain/audit"
	"fitcoach/internal/domain/progress"
)

// AddProgressNoteInput carries input for AddProgressNote.
type AddProgressNoteInput struct {
	Actor    account.Identity
	ClientID string
	Note     string
}

// AddProgressNoteDeps holds dependencies for AddProgressNote.
type AddProgressNoteDeps struct {
	AccountStore  ClientLookup
	ProgressStore ProgressStoreForSubmission
	GenerateID    func() string
	Now           func() time.Time
	Audit         AuditRecorder
}

// ExecuteAddProgressNote appends a progress note to a client's history.
// PRE: Actor is an admin
// POST: note stored; progress.ErrEmptyNote on blank text; ErrNotFound if out of scope
func ExecuteAddProgressNote(ctx context.Context, input AddProgressNoteInput, deps AddProgressNoteDeps) (progress.Note, error) {
	u, err := loadClient(ctx, deps.AccountStore, input.ClientID)
	if err != nil {
		return progress.Note{}, err
	}
	n, err := addNote(ctx, u.ID, input.Note, deps.ProgressStore, deps.GenerateID, deps.Now)
	if err != nil {
		return progress.Note{}, err
	}
	record(ctx, deps.Audit, input.Actor, audit.CategoryProgress, audit.ActionCreate, func(e audit.Event) audit.Event {
		return e.WithResource("user", u.ID)
	})
	return n, nil
}
