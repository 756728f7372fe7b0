package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"fitcoach/internal/adapters/email"
	"fitcoach/internal/domain/account"
	"fitcoach/internal/domain/audit"
)

// AccountStoreForActivate defines the store interface needed by the activation orchestrators.
type AccountStoreForActivate interface {
	GetClient(ctx context.Context, id string) (account.User, error)
	SetClientEstado(ctx context.Context, id, estado string) error
}

// ActivateDeps holds dependencies for SelfActivate and AdminActivate.
type ActivateDeps struct {
	AccountStore AccountStoreForActivate
	Mailer       email.Sender // optional: nil disables the activation notice
	LoginURL     string
	Audit        AuditRecorder
}

// AdminActivateInput carries input for AdminActivate.
type AdminActivateInput struct {
	Actor    account.Identity
	ClientID string
}

// ExecuteSelfActivate moves the caller's own account to activo (the "pagar" action).
// PRE: caller is a signed-in cliente
// POST: caller estado is activo; returns true if it changed here
// INVARIANT: idempotent; an already active account succeeds without a write
func ExecuteSelfActivate(ctx context.Context, caller account.Identity, deps ActivateDeps) (bool, error) {
	return activate(ctx, caller, caller.UserID, deps)
}

// ExecuteAdminActivate moves a cliente to activo on an admin's behalf.
// PRE: Actor is an admin
// POST: client estado is activo; ErrNotFound for unknown or non-cliente ids
// INVARIANT: idempotent
func ExecuteAdminActivate(ctx context.Context, input AdminActivateInput, deps ActivateDeps) (bool, error) {
	return activate(ctx, input.Actor, input.ClientID, deps)
}

func activate(ctx context.Context, actor account.Identity, clientID string, deps ActivateDeps) (bool, error) {
	u, err := loadClient(ctx, deps.AccountStore, clientID)
	if err != nil {
		return false, err
	}
	if !u.Activate() {
		return false, nil
	}
	if err := deps.AccountStore.SetClientEstado(ctx, u.ID, u.Estado); err != nil {
		return false, notFound(err)
	}

	slog.Info("account_event", "event", "activated", "user_id", u.ID, "by", actor.UserID)
	record(ctx, deps.Audit, actor, audit.CategoryAccount, audit.ActionActivate, func(e audit.Event) audit.Event {
		return e.WithResource("user", u.ID).WithDescription(u.Email)
	})
	notifyActivated(ctx, deps.Mailer, deps.LoginURL, u)
	return true, nil
}

// NotifyTimeout bounds how long an activation waits on the mail provider.
var NotifyTimeout = 5 * time.Second

// notifyActivated sends the activation notice. Delivery is best-effort and
// never holds the request longer than NotifyTimeout.
func notifyActivated(ctx context.Context, mailer email.Sender, loginURL string, u account.User) {
	if mailer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, NotifyTimeout)
	defer cancel()
	if _, err := mailer.Send(ctx, email.ActivationMessage(u.Name, u.Email, loginURL)); err != nil {
		slog.Warn("notify_event", "event", "activation_email_failed", "user_id", u.ID, "error", err)
		return
	}
	slog.Info("notify_event", "event", "activation_email_sent", "user_id", u.ID)
}
