package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"fitcoach/internal/domain/account"
)

// AccountStoreForRegister defines the store interface needed by Register.
type AccountStoreForRegister interface {
	Insert(ctx context.Context, u account.User) error
}

// RegisterInput carries input for self-registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// RegisterDeps holds dependencies for Register.
type RegisterDeps struct {
	AccountStore AccountStoreForRegister
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteRegister creates a pending cliente. It never signs the caller in.
// PRE: none
// POST: a cliente/pendiente user exists with the normalised email
// INVARIANT: email is unique; a collision fails with account.ErrDuplicateEmail
func ExecuteRegister(ctx context.Context, input RegisterInput, deps RegisterDeps) (account.User, error) {
	u, err := newUser(deps.GenerateID(), input.Name, input.Email, input.Password,
		account.RoleCliente, account.EstadoPendiente, deps.Now())
	if err != nil {
		return account.User{}, err
	}
	if err := deps.AccountStore.Insert(ctx, u); err != nil {
		return account.User{}, err
	}
	slog.Info("account_event", "event", "registered", "user_id", u.ID)
	return u, nil
}
