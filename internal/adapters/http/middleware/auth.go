package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"fitcoach/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const identityContextKey contextKey = "identity"

var (
	ErrUnauthenticated = errors.New("login required")
	ErrForbidden       = errors.New("forbidden")
)

// UserLookup resolves the user bound to a session.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (account.User, error)
}

// Decision is the outcome of an access guard.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

// Err maps a decision onto its error. Allow maps to nil.
func (d Decision) Err() error {
	switch d {
	case DenyUnauthenticated:
		return ErrUnauthenticated
	case DenyForbidden:
		return ErrForbidden
	default:
		return nil
	}
}

// LoginRequired allows any signed-in identity.
func LoginRequired(id account.Identity) Decision {
	if id.IsAnonymous() {
		return DenyUnauthenticated
	}
	return Allow
}

// RoleRequired allows signed-in identities holding role. Anonymous callers are
// unauthenticated, not forbidden.
func RoleRequired(id account.Identity, role string) Decision {
	if d := LoginRequired(id); d != Allow {
		return d
	}
	if id.Role != role {
		return DenyForbidden
	}
	return Allow
}

// Gate resolves the session cookie into an account.Identity once per request
// and stores it in the request context. It never blocks a request; guards do.
// A bad token or a deleted user yields the anonymous identity and clears the cookie.
func Gate(sessions *SessionManager, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id account.Identity
			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				userID, err := sessions.Parse(cookie.Value)
				if err != nil {
					ClearSessionCookie(w)
				} else {
					u, err := users.GetByID(r.Context(), userID)
					switch {
					case errors.Is(err, sql.ErrNoRows):
						slog.Info("auth_event", "event", "session_user_gone", "user_id", userID)
						ClearSessionCookie(w)
					case err != nil:
						slog.Error("internal_error", "error", err.Error(), "where", "gate")
						http.Error(w, "internal server error", http.StatusInternalServerError)
						return
					default:
						id = account.IdentityOf(u)
					}
				}
			}
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
		})
	}
}

// IdentityFromContext returns the identity resolved by Gate, or the anonymous identity.
func IdentityFromContext(ctx context.Context) account.Identity {
	id, _ := ctx.Value(identityContextKey).(account.Identity)
	return id
}

// ContextWithIdentity returns a context carrying id.
func ContextWithIdentity(ctx context.Context, id account.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}
