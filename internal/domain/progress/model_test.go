package progress_test

import (
	"testing"
	"time"

	"fitcoach/internal/domain/progress"
)

// TestNote_Validate tests validation of Note.
func TestNote_Validate(t *testing.T) {
	tests := []struct {
		name    string
		note    progress.Note
		wantErr bool
	}{
		{
			name:    "valid note",
			note:    progress.Note{ID: "1", UserID: "u1", Content: "Subí 5kg en sentadilla", CreatedAt: time.Now()},
			wantErr: false,
		},
		{
			name:    "empty user",
			note:    progress.Note{ID: "2", Content: "nota", CreatedAt: time.Now()},
			wantErr: true,
		},
		{
			name:    "blank content",
			note:    progress.Note{ID: "3", UserID: "u1", Content: "  ", CreatedAt: time.Now()},
			wantErr: true,
		},
		{
			name:    "zero created_at",
			note:    progress.Note{ID: "4", UserID: "u1", Content: "nota"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.note.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
