package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fitcoach/internal/domain/account"
)

// ErrAdminCredentialsRequired is returned when no admin exists and none was configured.
var ErrAdminCredentialsRequired = errors.New("no admin account exists: set FITCOACH_ADMIN_EMAIL and FITCOACH_ADMIN_PASSWORD")

// AccountStoreForSeed defines the store interface needed by SeedAdmin.
type AccountStoreForSeed interface {
	CountAdmins(ctx context.Context) (int, error)
	Insert(ctx context.Context, u account.User) error
}

// SeedAdminInput carries operator-supplied bootstrap credentials.
type SeedAdminInput struct {
	Name     string
	Email    string
	Password string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStoreForSeed
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSeedAdmin creates the bootstrap admin when no admin exists yet.
// PRE: database is migrated
// POST: at least one admin exists; returns true if one was created here
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) (bool, error) {
	count, err := deps.AccountStore.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if input.Email == "" || input.Password == "" {
		return false, ErrAdminCredentialsRequired
	}

	name := input.Name
	if name == "" {
		name = "Administrador"
	}
	u, err := newUser(deps.GenerateID(), name, input.Email, input.Password,
		account.RoleAdmin, account.EstadoActivo, deps.Now())
	if err != nil {
		return false, err
	}
	if err := deps.AccountStore.Insert(ctx, u); err != nil {
		return false, err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", u.Email)
	return true, nil
}
