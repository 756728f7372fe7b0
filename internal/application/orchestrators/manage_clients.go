package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fitcoach/internal/adapters/email"
	"fitcoach/internal/domain/account"
	"fitcoach/internal/domain/audit"
)

// AccountStoreForCreateClient defines the store interface needed by CreateClient.
type AccountStoreForCreateClient interface {
	Insert(ctx context.Context, u account.User) error
}

// CreateClientInput carries input for CreateClient.
type CreateClientInput struct {
	Actor    account.Identity
	Name     string
	Email    string
	Password string
	Estado   string // free-form; anything but "activo" becomes pendiente
}

// CreateClientDeps holds dependencies for CreateClient.
type CreateClientDeps struct {
	AccountStore AccountStoreForCreateClient
	GenerateID   func() string
	Now          func() time.Time
	Audit        AuditRecorder
}

// ExecuteCreateClient creates a cliente with an admin-chosen estado.
// PRE: Actor is an admin
// POST: cliente stored; an invalid estado defaults to pendiente instead of failing
// INVARIANT: email is unique; a collision fails with account.ErrDuplicateEmail
func ExecuteCreateClient(ctx context.Context, input CreateClientInput, deps CreateClientDeps) (account.User, error) {
	u, err := newUser(deps.GenerateID(), input.Name, input.Email, input.Password,
		account.RoleCliente, account.ParseEstado(input.Estado), deps.Now())
	if err != nil {
		return account.User{}, err
	}
	if err := deps.AccountStore.Insert(ctx, u); err != nil {
		return account.User{}, err
	}

	slog.Info("account_event", "event", "client_created", "user_id", u.ID, "estado", u.Estado, "by", input.Actor.UserID)
	record(ctx, deps.Audit, input.Actor, audit.CategoryAccount, audit.ActionCreate, func(e audit.Event) audit.Event {
		return e.WithResource("user", u.ID).WithDescription(u.Email)
	})
	return u, nil
}

// AccountStoreForUpdateClient defines the store interface needed by UpdateClient.
type AccountStoreForUpdateClient interface {
	GetClient(ctx context.Context, id string) (account.User, error)
	UpdateClient(ctx context.Context, u account.User) error
}

// UpdateClientInput carries input for UpdateClient.
type UpdateClientInput struct {
	Actor    account.Identity
	ClientID string
	Name     string
	Email    string
	Estado   string
}

// UpdateClientDeps holds dependencies for UpdateClient.
type UpdateClientDeps struct {
	AccountStore AccountStoreForUpdateClient
	Mailer       email.Sender // optional
	LoginURL     string
	Audit        AuditRecorder
}

// ExecuteUpdateClient edits a cliente's name, email and estado.
// PRE: Actor is an admin
// POST: client updated; ErrNotFound if out of scope; account.ErrDuplicateEmail if the
// email belongs to another user
// INVARIANT: estado never moves from activo back to pendiente
func ExecuteUpdateClient(ctx context.Context, input UpdateClientInput, deps UpdateClientDeps) (account.User, error) {
	current, err := loadClient(ctx, deps.AccountStore, input.ClientID)
	if err != nil {
		return account.User{}, err
	}

	updated := current
	updated.Name = strings.TrimSpace(input.Name)
	updated.Email = account.NormalizeEmail(input.Email)
	updated.Estado = account.NextEstado(current.Estado, input.Estado)
	if err := updated.Validate(); err != nil {
		return account.User{}, err
	}
	if err := deps.AccountStore.UpdateClient(ctx, updated); err != nil {
		return account.User{}, notFound(err)
	}

	slog.Info("account_event", "event", "client_updated", "user_id", updated.ID, "by", input.Actor.UserID)
	record(ctx, deps.Audit, input.Actor, audit.CategoryAccount, audit.ActionUpdate, func(e audit.Event) audit.Event {
		return e.WithResource("user", updated.ID).WithDescription(updated.Email)
	})
	if current.Estado != account.EstadoActivo && updated.Estado == account.EstadoActivo {
		notifyActivated(ctx, deps.Mailer, deps.LoginURL, updated)
	}
	return updated, nil
}

// AccountStoreForDeleteClient defines the store interface needed by DeleteClient.
type AccountStoreForDeleteClient interface {
	DeleteClient(ctx context.Context, id string) error
}

// DeleteClientInput carries input for DeleteClient.
type DeleteClientInput struct {
	Actor    account.Identity
	ClientID string
}

// DeleteClientDeps holds dependencies for DeleteClient.
type DeleteClientDeps struct {
	AccountStore AccountStoreForDeleteClient
	Audit        AuditRecorder
}

// ExecuteDeleteClient removes a cliente and, through the schema's cascades, every
// plan, measurement and note they own.
// PRE: Actor is an admin
// POST: no rows remain for the client; ErrNotFound if out of scope
func ExecuteDeleteClient(ctx context.Context, input DeleteClientInput, deps DeleteClientDeps) error {
	if strings.TrimSpace(input.ClientID) == "" {
		return ErrNotFound
	}
	if err := deps.AccountStore.DeleteClient(ctx, input.ClientID); err != nil {
		return notFound(err)
	}

	slog.Info("account_event", "event", "client_deleted", "user_id", input.ClientID, "by", input.Actor.UserID)
	record(ctx, deps.Audit, input.Actor, audit.CategoryAccount, audit.ActionDelete, func(e audit.Event) audit.Event {
		return e.WithResource("user", input.ClientID).WithSeverity(audit.SeverityWarning)
	})
	return nil
}
