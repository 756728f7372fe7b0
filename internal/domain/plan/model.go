package plan

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind selects which plan table a Plan lives in.
type Kind string

const (
	KindDiet     Kind = "dieta"
	KindTraining Kind = "entrenamiento"
)

// MaxContentLength caps plan content (markdown).
const MaxContentLength = 20000

// Domain errors
var (
	ErrEmptyUserID    = errors.New("user ID is required")
	ErrEmptyContent   = errors.New("plan content cannot be empty")
	ErrInvalidKind    = errors.New("plan kind must be 'dieta' or 'entrenamiento'")
	ErrContentTooLong = errors.New("plan content cannot exceed 20000 characters")
)

// Plan is the single diet or training plan owned by a user.
// At most one row per (Kind, UserID); saving replaces the previous content.
type Plan struct {
	UserID    string
	Kind      Kind
	Content   string
	UpdatedAt time.Time
}

// New builds a plan with trimmed content, stamped with now.
func New(kind Kind, userID, content string, now time.Time) Plan {
	return Plan{
		UserID:    userID,
		Kind:      kind,
		Content:   strings.TrimSpace(content),
		UpdatedAt: now,
	}
}

// Validate checks if the Plan has valid data.
// PRE: Plan struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Plan) Validate() error {
	if p.UserID == "" {
		return ErrEmptyUserID
	}
	if !p.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(p.Content) == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(p.Content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// Valid reports whether k names a known plan table.
func (k Kind) Valid() bool {
	return k == KindDiet || k == KindTraining
}
