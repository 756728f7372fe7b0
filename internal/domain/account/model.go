package account

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	MaxNameLength  = 120
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Role constants
const (
	RoleAdmin   = "admin"
	RoleCliente = "cliente"
)

// Estado constants (account activation state)
const (
	EstadoPendiente = "pendiente"
	EstadoActivo    = "activo"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleCliente}

// HashCost is the bcrypt cost used by SetPassword.
var HashCost = 12

// Domain errors
var (
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrEmptyEmail      = errors.New("email cannot be empty")
	ErrInvalidEmail    = errors.New("email must contain '@'")
	ErrInvalidRole     = errors.New("role must be one of: admin, cliente")
	ErrInvalidEstado   = errors.New("estado must be one of: pendiente, activo")
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrPasswordTooLong = errors.New("password cannot exceed 72 bytes")
	ErrWrongPassword   = errors.New("incorrect password")
	ErrDuplicateEmail  = errors.New("an account with this email already exists")
	ErrNotActive       = errors.New("account is not active")
	ErrNameTooLong     = errors.New("name cannot exceed 120 characters")
	ErrEmailTooLong    = errors.New("email cannot exceed 254 characters")
)

// User holds state for the credential store.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Estado       string
	CreatedAt    time.Time
}

// Identity is the per-request view of the caller, resolved from the session.
// The zero value is the anonymous identity.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   string
	Estado string
}

// IdentityOf projects a stored user onto the request identity.
func IdentityOf(u User) Identity {
	return Identity{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Estado: u.Estado,
	}
}

// IsAnonymous reports whether no user is bound to the request.
func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

// IsActive reports whether the caller's account is activo.
func (i Identity) IsActive() bool {
	return i.Estado == EstadoActivo
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseEstado maps free-form input onto a valid estado.
// Anything other than "activo" becomes "pendiente"; invalid input never fails.
func ParseEstado(s string) string {
	if strings.ToLower(strings.TrimSpace(s)) == EstadoActivo {
		return EstadoActivo
	}
	return EstadoPendiente
}

// NextEstado returns the estado after an admin edit requests `requested`.
// Only pendiente→activo is a legal transition, so an activo account stays activo.
func NextEstado(current, requested string) string {
	if current == EstadoActivo {
		return EstadoActivo
	}
	return ParseEstado(requested)
}

// Validate checks if the User has valid data.
// PRE: User struct is populated
// POST: Returns nil if valid, error otherwise
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(u.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	if utf8.RuneCountInString(u.Email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if u.Role != RoleAdmin && u.Role != RoleCliente {
		return ErrInvalidRole
	}
	if u.Estado != EstadoPendiente && u.Estado != EstadoActivo {
		return ErrInvalidEstado
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is non-empty and at most MaxPasswordBytes long
// POST: PasswordHash is set to bcrypt hash
func (u *User) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), HashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: User fields are not mutated
func (u *User) CheckPassword(plaintext string) error {
	if u.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// Activate moves the user to activo. Activating an active user is a no-op.
// POST: Estado is activo; returns true if the state changed
func (u *User) Activate() bool {
	if u.Estado == EstadoActivo {
		return false
	}
	u.Estado = EstadoActivo
	return true
}
