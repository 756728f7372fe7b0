package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "fitcoach_session"

// DefaultSessionTTL is the session lifetime when none is configured.
const DefaultSessionTTL = 24 * time.Hour

// ErrInvalidSession is returned for tokens that are malformed, forged or expired.
var ErrInvalidSession = errors.New("invalid session")

// SecureCookies marks cookies Secure. Set in production (HTTPS).
var SecureCookies bool

// Claims is the session token payload. It binds the user ID only; role and
// estado are looked up on every request so changes apply immediately.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies HS256-signed session tokens.
type SessionManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSessionManager creates a session manager.
// PRE: key is at least 32 bytes
// POST: tokens expire after ttl (DefaultSessionTTL if ttl <= 0)
func NewSessionManager(key []byte, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{key: key, ttl: ttl, now: time.Now}
}

// TTL returns the configured session lifetime.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for userID.
// PRE: userID is non-empty
// POST: Returns a token valid until now+TTL
func (m *SessionManager) Issue(userID string) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

// Parse verifies a token and returns the bound user ID.
// POST: Returns ErrInvalidSession for any signature, algorithm or expiry failure
func (m *SessionManager) Parse(token string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return m.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || claims.UserID == "" {
		return "", ErrInvalidSession
	}
	return claims.UserID, nil
}

// SetSessionCookie writes token as an HttpOnly cookie that lives as long as the token.
func (m *SessionManager) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
