package plan_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"fitcoach/internal/adapters/storage/account"
	"fitcoach/internal/adapters/storage/plan"
	"fitcoach/internal/adapters/storage/storagetest"
	accountdomain "fitcoach/internal/domain/account"
	domain "fitcoach/internal/domain/plan"
)

func seedClient(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	err := account.NewSQLiteStore(db).Insert(context.Background(), accountdomain.User{
		ID: id, Name: "Ana", Email: id + "@x.com", PasswordHash: "h",
		Role: accountdomain.RoleCliente, Estado: accountdomain.EstadoActivo, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}
}

// TestReplace_SingleRowPerUser verifies two saves leave one row with the latest content.
func TestReplace_SingleRowPerUser(t *testing.T) {
	db := storagetest.Open(t)
	seedClient(t, db, "c1")
	store := plan.NewDietSQLiteStore(db)
	ctx := context.Background()

	first := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	if err := store.Replace(ctx, domain.New(domain.KindDiet, "c1", "Avena y fruta", first)); err != nil {
		t.Fatalf("Replace #1: %v", err)
	}
	if err := store.Replace(ctx, domain.New(domain.KindDiet, "c1", "Huevos y pan", second)); err != nil {
		t.Fatalf("Replace #2: %v", err)
	}

	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM dietas WHERE user_id = 'c1'").Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Errorf("rows = %d, want 1", rows)
	}

	got, err := store.GetByUserID(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if got.Content != "Huevos y pan" {
		t.Errorf("Content = %q, want latest", got.Content)
	}
	if !got.UpdatedAt.Equal(second) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, second)
	}
	if got.Kind != domain.KindDiet {
		t.Errorf("Kind = %s, want dieta", got.Kind)
	}
}

// TestReplace_TablesAreIndependent verifies diet and training plans do not share rows.
func TestReplace_TablesAreIndependent(t *testing.T) {
	db := storagetest.Open(t)
	seedClient(t, db, "c1")
	diets := plan.NewDietSQLiteStore(db)
	trainings := plan.NewTrainingSQLiteStore(db)
	ctx := context.Background()

	if err := diets.Replace(ctx, domain.New(domain.KindDiet, "c1", "dieta", time.Now())); err != nil {
		t.Fatal(err)
	}
	if _, err := trainings.GetByUserID(ctx, "c1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("training GetByUserID err = %v, want sql.ErrNoRows", err)
	}
	if err := trainings.Replace(ctx, domain.New(domain.KindDiet, "c1", "dieta", time.Now())); err == nil {
		t.Error("expected error writing a diet plan into the training store")
	}
}

// TestReplace_UnknownUser verifies the foreign key rejects plans for missing users.
func TestReplace_UnknownUser(t *testing.T) {
	store := plan.NewTrainingSQLiteStore(storagetest.Open(t))
	err := store.Replace(context.Background(), domain.New(domain.KindTraining, "ghost", "rutina", time.Now()))
	if err == nil {
		t.Error("expected foreign key failure")
	}
}
