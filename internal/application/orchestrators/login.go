package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"

	"fitcoach/internal/domain/account"
	"fitcoach/internal/domain/audit"

	"golang.org/x/crypto/bcrypt"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.User, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the result of a successful login.
// Only UserID goes into the session; role and estado are re-read per request.
type LoginResult struct {
	UserID   string
	Role     string
	Redirect string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	Audit        AuditRecorder
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// equaliseTiming burns one bcrypt comparison so an unknown email costs
// about as much as a wrong password.
func equaliseTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("fitcoach-timing-equaliser"), account.HashCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// HomePath returns the landing page for a role after login.
func HomePath(role string) string {
	if role == account.RoleAdmin {
		return "/admin/panel"
	}
	return "/cliente/panel"
}

// ExecuteLogin validates credentials and returns the user to bind to the session.
// PRE: none
// POST: Returns the user's ID and landing page, or ErrInvalidCredentials
// INVARIANT: unknown email and wrong password are indistinguishable to the caller
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	email := account.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	u, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return LoginResult{}, err
		}
		equaliseTiming(input.Password)
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	if err := u.CheckPassword(input.Password); err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_password")
		record(ctx, deps.Audit, account.IdentityOf(u), audit.CategoryAuth, audit.ActionLogin, func(e audit.Event) audit.Event {
			return e.WithSeverity(audit.SeverityWarning).WithDescription("contraseña incorrecta")
		})
		return LoginResult{}, ErrInvalidCredentials
	}

	slog.Info("auth_event", "event", "login_success", "user_id", u.ID, "role", u.Role)
	record(ctx, deps.Audit, account.IdentityOf(u), audit.CategoryAuth, audit.ActionLogin, nil)

	return LoginResult{
		UserID:   u.ID,
		Role:     u.Role,
		Redirect: HomePath(u.Role),
	}, nil
}

// ExecuteLogout records the end of a session. Clearing the cookie is the caller's job.
// PRE: caller may be anonymous
// POST: an audit event exists for signed-in callers
func ExecuteLogout(ctx context.Context, caller account.Identity, rec AuditRecorder) {
	if caller.IsAnonymous() {
		return
	}
	slog.Info("auth_event", "event", "logout", "user_id", caller.UserID)
	record(ctx, rec, caller, audit.CategoryAuth, audit.ActionLogout, nil)
}
