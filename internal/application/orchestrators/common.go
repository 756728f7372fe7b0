package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"fitcoach/internal/domain/account"
	"fitcoach/internal/domain/audit"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("client not found")
)

// AuditRecorder persists audit events. A nil recorder disables auditing.
type AuditRecorder interface {
	Save(ctx context.Context, e audit.Event) error
}

// ClientLookup resolves a cliente-role user by ID.
type ClientLookup interface {
	GetClient(ctx context.Context, id string) (account.User, error)
}

// notFound maps a store-level missing row onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// loadClient fetches a cliente, translating a missing or out-of-scope id to ErrNotFound.
func loadClient(ctx context.Context, store ClientLookup, id string) (account.User, error) {
	if strings.TrimSpace(id) == "" {
		return account.User{}, ErrNotFound
	}
	u, err := store.GetClient(ctx, id)
	if err != nil {
		return account.User{}, notFound(err)
	}
	return u, nil
}

// record saves an audit event. Audit failures are logged, never returned.
func record(ctx context.Context, rec AuditRecorder, actor account.Identity, category audit.Category, action audit.Action, build func(audit.Event) audit.Event) {
	if rec == nil {
		return
	}
	e := audit.NewEvent(actor.UserID, actor.Email, actor.Role, category, action)
	if build != nil {
		e = build(e)
	}
	if err := rec.Save(ctx, e); err != nil {
		slog.Error("audit_event_failed", "category", category, "action", action, "error", err)
	}
}

// newUser builds and validates a user with a hashed password.
func newUser(id, name, email, password, role, estado string, now time.Time) (account.User, error) {
	u := account.User{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Email:     account.NormalizeEmail(email),
		Role:      role,
		Estado:    estado,
		CreatedAt: now,
	}
	if err := u.Validate(); err != nil {
		return account.User{}, err
	}
	if strings.TrimSpace(password) == "" {
		return account.User{}, account.ErrEmptyPassword
	}
	if err := u.SetPassword(password); err != nil {
		return account.User{}, err
	}
	return u, nil
}
