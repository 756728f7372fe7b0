package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"fitcoach/internal/domain/account"
	"fitcoach/internal/domain/audit"
	"fitcoach/internal/domain/plan"
)

// PlanStoreForSave defines the store interface needed by SavePlan.
type PlanStoreForSave interface {
	Replace(ctx context.Context, p plan.Plan) error
}

// SavePlanInput carries input for SavePlan.
type SavePlanInput struct {
	Actor    account.Identity
	ClientID string
	Kind     plan.Kind
	Content  string
}

// SavePlanDeps holds dependencies for SavePlan.
type SavePlanDeps struct {
	AccountStore  ClientLookup
	DietStore     PlanStoreForSave
	TrainingStore PlanStoreForSave
	Now           func() time.Time
	Audit         AuditRecorder
}

// ExecuteSavePlan replaces a client's diet or training plan.
// PRE: Actor is an admin
// POST: exactly one plan row of Kind exists for the client, holding Content
// INVARIANT: blank content fails with plan.ErrEmptyContent; ErrNotFound if out of scope
func ExecuteSavePlan(ctx context.Context, input SavePlanInput, deps SavePlanDeps) (plan.Plan, error) {
	var store PlanStoreForSave
	switch input.Kind {
	case plan.KindDiet:
		store = deps.DietStore
	case plan.KindTraining:
		store = deps.TrainingStore
	default:
		return plan.Plan{}, plan.ErrInvalidKind
	}

	u, err := loadClient(ctx, deps.AccountStore, input.ClientID)
	if err != nil {
		return plan.Plan{}, err
	}

	p := plan.New(input.Kind, u.ID, input.Content, deps.Now())
	if err := p.Validate(); err != nil {
		return plan.Plan{}, err
	}
	if err := store.Replace(ctx, p); err != nil {
		return plan.Plan{}, err
	}

	slog.Info("plan_event", "event", "plan_saved", "kind", p.Kind, "user_id", u.ID)
	record(ctx, deps.Audit, input.Actor, audit.CategoryPlan, audit.ActionUpdate, func(e audit.Event) audit.Event {
		return e.WithResource(string(p.Kind), u.ID)
	})
	return p, nil
}
