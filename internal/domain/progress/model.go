package progress

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxNoteLength caps a progress note.
const MaxNoteLength = 2000

// Domain errors
var (
	ErrEmptyUserID = errors.New("user ID is required")
	ErrEmptyNote   = errors.New("progress note cannot be empty")
	ErrNoteTooLong = errors.New("progress note cannot exceed 2000 characters")
)

// Note is a free-text progress update. Append-only.
type Note struct {
	ID        string
	UserID    string
	Content   string
	CreatedAt time.Time
}

// Validate checks if the Note has valid data.
// PRE: Note struct is populated
// POST: Returns nil if valid, error otherwise
func (n *Note) Validate() error {
	if n.UserID == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(n.Content) == "" {
		return ErrEmptyNote
	}
	if utf8.RuneCountInString(n.Content) > MaxNoteLength {
		return ErrNoteTooLong
	}
	if n.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}
