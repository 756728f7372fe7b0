package progress_test

import (
	"context"
	"testing"
	"time"

	"fitcoach/internal/adapters/storage/account"
	"fitcoach/internal/adapters/storage/progress"
	"fitcoach/internal/adapters/storage/storagetest"
	accountdomain "fitcoach/internal/domain/account"
	domain "fitcoach/internal/domain/progress"
)

func TestInsertAndList(t *testing.T) {
	db := storagetest.Open(t)
	ctx := context.Background()
	if err := account.NewSQLiteStore(db).Insert(ctx, accountdomain.User{
		ID: "c1", Name: "Ana", Email: "ana@x.com", PasswordHash: "h",
		Role: accountdomain.RoleCliente, Estado: accountdomain.EstadoActivo, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}
	store := progress.NewSQLiteStore(db)

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	for i, text := range []string{"Semana 1", "Semana 2"} {
		n := domain.Note{ID: text, UserID: "c1", Content: text, CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour)}
		if err := store.Insert(ctx, n); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	notes, err := store.ListByUserID(ctx, "c1")
	if err != nil {
		t.Fatalf("ListByUserID: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("len = %d, want 2", len(notes))
	}
	if notes[0].Content != "Semana 2" {
		t.Errorf("first = %q, want newest", notes[0].Content)
	}

	empty, err := store.ListByUserID(ctx, "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no notes, got %d", len(empty))
	}
}
