package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitcoach/internal/domain/account"
	"fitcoach/internal/domain/audit"
	"fitcoach/internal/domain/measurement"
	"fitcoach/internal/domain/plan"
	"fitcoach/internal/domain/progress"
)

var actor = account.IdentityOf(adminUser("admin-1"))

func submissionDeps() (SubmissionDeps, *mockMeasurementStore, *mockProgressStore) {
	ms := &mockMeasurementStore{}
	ps := &mockProgressStore{}
	return SubmissionDeps{MeasurementStore: ms, ProgressStore: ps, GenerateID: seqIDs(), Now: fixedNow}, ms, ps
}

// TestSubmission_PendingThenActive verifies a pending cliente is blocked until self-activation.
func TestSubmission_PendingThenActive(t *testing.T) {
	ctx := context.Background()
	accounts := newMockAccountStore(cliente("c1", "ana@x.com", account.EstadoPendiente))
	subDeps, ms, _ := submissionDeps()
	form := SubmissionForm{Measurement: measurement.Form{Weight: "70.5"}}

	caller := account.IdentityOf(accounts.users["c1"])
	if _, err := ExecuteClientSubmission(ctx, caller, form, subDeps); !errors.Is(err, account.ErrNotActive) {
		t.Fatalf("pending submission err = %v, want ErrNotActive", err)
	}
	if len(ms.rows) != 0 {
		t.Fatal("nothing should be stored for a pending cliente")
	}

	if _, err := ExecuteSelfActivate(ctx, caller, ActivateDeps{AccountStore: accounts}); err != nil {
		t.Fatalf("self-activate: %v", err)
	}

	caller = account.IdentityOf(accounts.users["c1"])
	if _, err := ExecuteClientSubmission(ctx, caller, form, subDeps); err != nil {
		t.Fatalf("active submission: %v", err)
	}
	if len(ms.rows) != 1 {
		t.Errorf("rows = %d, want 1", len(ms.rows))
	}
}

// TestSelfActivate_Idempotent verifies two activations both succeed and notify once.
func TestSelfActivate_Idempotent(t *testing.T) {
	ctx := context.Background()
	accounts := newMockAccountStore(cliente("c1", "ana@x.com", account.EstadoPendiente))
	mailer := &mockMailer{}
	rec := &mockAudit{}
	deps := ActivateDeps{AccountStore: accounts, Mailer: mailer, Audit: rec}
	caller := account.IdentityOf(accounts.users["c1"])

	changed, err := ExecuteSelfActivate(ctx, caller, deps)
	if err != nil || !changed {
		t.Fatalf("first activation = %v, %v; want changed", changed, err)
	}
	changed, err = ExecuteSelfActivate(ctx, caller, deps)
	if err != nil || changed {
		t.Fatalf("second activation = %v, %v; want no-op success", changed, err)
	}
	if got := accounts.users["c1"].Estado; got != account.EstadoActivo {
		t.Errorf("estado = %s, want activo", got)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].To != "ana@x.com" {
		t.Errorf("sent = %+v, want one notice to ana@x.com", mailer.sent)
	}
	if len(rec.events) != 1 || rec.events[0].Action != audit.ActionActivate {
		t.Errorf("audit = %+v, want one activate event", rec.events)
	}
}

// TestActivate_MailFailureIsNotFatal verifies delivery errors do not fail the activation.
func TestActivate_MailFailureIsNotFatal(t *testing.T) {
	accounts := newMockAccountStore(cliente("c1", "ana@x.com", account.EstadoPendiente))
	deps := ActivateDeps{AccountStore: accounts, Mailer: &mockMailer{err: errors.New("smtp down")}}
	if _, err := ExecuteAdminActivate(context.Background(), AdminActivateInput{Actor: actor, ClientID: "c1"}, deps); err != nil {
		t.Fatalf("activation failed on mail error: %v", err)
	}
	if accounts.users["c1"].Estado != account.EstadoActivo {
		t.Error("client should be active")
	}
}

// TestActivate_MailTimeout verifies a stalled provider cannot hold the activation.
func TestActivate_MailTimeout(t *testing.T) {
	saved := NotifyTimeout
	NotifyTimeout = 20 * time.Millisecond
	t.Cleanup(func() { NotifyTimeout = saved })

	accounts := newMockAccountStore(cliente("c1", "ana@x.com", account.EstadoPendiente))
	deps := ActivateDeps{AccountStore: accounts, Mailer: stallingMailer{}}
	start := time.Now()
	changed, err := ExecuteSelfActivate(context.Background(), account.IdentityOf(accounts.users["c1"]), deps)
	if err != nil || !changed {
		t.Fatalf("activation = %v, %v; want changed without error", changed, err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("activation took %v with a stalled mailer", elapsed)
	}
	if accounts.users["c1"].Estado != account.EstadoActivo {
		t.Error("client should be active")
	}
}

func TestAdminActivate_Scope(t *testing.T) {
	accounts := newMockAccountStore(adminUser("a2"))
	deps := ActivateDeps{AccountStore: accounts}
	for _, id := range []string{"a2", "missing", ""} {
		_, err := ExecuteAdminActivate(context.Background(), AdminActivateInput{Actor: actor, ClientID: id}, deps)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("activate %q err = %v, want ErrNotFound", id, err)
		}
	}
}

func TestSubmission_MeasurementParsing(t *testing.T) {
	active := account.IdentityOf(cliente("c1", "ana@x.com", account.EstadoActivo))

	t.Run("blank field is absent, not zero", func(t *testing.T) {
		deps, ms, _ := submissionDeps()
		res, err := ExecuteClientSubmission(context.Background(), active,
			SubmissionForm{Measurement: measurement.Form{Weight: "70.5", Height: ""}}, deps)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Measurement == nil || res.Note != nil {
			t.Fatalf("result = %+v, want a measurement", res)
		}
		m := ms.rows[0]
		if m.Weight == nil || *m.Weight != 70.5 {
			t.Errorf("Weight = %v, want 70.5", m.Weight)
		}
		if m.Height != nil {
			t.Errorf("Height = %v, want nil", *m.Height)
		}
		if m.Source != measurement.SourceCliente {
			t.Errorf("Source = %s, want cliente", m.Source)
		}
	})

	t.Run("malformed field fails whole submission", func(t *testing.T) {
		deps, ms, _ := submissionDeps()
		_, err := ExecuteClientSubmission(context.Background(), active,
			SubmissionForm{Measurement: measurement.Form{Weight: "70.5", Waist: "abc"}}, deps)
		if !errors.Is(err, measurement.ErrInvalidMeasurement) {
			t.Errorf("err = %v, want ErrInvalidMeasurement", err)
		}
		if len(ms.rows) != 0 {
			t.Error("nothing should be stored")
		}
	})

	t.Run("all blank", func(t *testing.T) {
		deps, _, _ := submissionDeps()
		_, err := ExecuteClientSubmission(context.Background(), active, SubmissionForm{}, deps)
		if !errors.Is(err, measurement.ErrNoReadings) || !errors.Is(err, measurement.ErrInvalidMeasurement) {
			t.Errorf("err = %v, want ErrNoReadings wrapping ErrInvalidMeasurement", err)
		}
	})

	t.Run("note short-circuits readings", func(t *testing.T) {
		deps, ms, ps := submissionDeps()
		res, err := ExecuteClientSubmission(context.Background(), active, SubmissionForm{
			Note:        "  Me siento bien  ",
			Measurement: measurement.Form{Weight: "not-a-number"},
		}, deps)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Note == nil || res.Note.Content != "Me siento bien" {
			t.Errorf("note = %+v, want trimmed content", res.Note)
		}
		if len(ms.rows) != 0 || len(ps.notes) != 1 {
			t.Errorf("measurements=%d notes=%d, want 0/1", len(ms.rows), len(ps.notes))
		}
	})
}

func TestAdminSubmission_IgnoresClientEstado(t *testing.T) {
	accounts := newMockAccountStore(cliente("c1", "ana@x.com", account.EstadoPendiente))
	subDeps, ms, _ := submissionDeps()
	rec := &mockAudit{}
	deps := AdminSubmissionDeps{SubmissionDeps: subDeps, AccountStore: accounts, Audit: rec}

	_, err := ExecuteAdminSubmission(context.Background(), AdminSubmissionInput{
		Actor: actor, ClientID: "c1", Form: SubmissionForm{Measurement: measurement.Form{BodyFat: "18"}},
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms.rows) != 1 || ms.rows[0].Source != measurement.SourceAdmin {
		t.Errorf("rows = %+v, want one admin-sourced row", ms.rows)
	}
	if len(rec.events) != 1 || rec.events[0].Category != audit.CategoryMeasurement {
		t.Errorf("audit = %+v", rec.events)
	}

	_, err = ExecuteAdminSubmission(context.Background(), AdminSubmissionInput{Actor: actor, ClientID: "admin-1"}, deps)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("out-of-scope err = %v, want ErrNotFound", err)
	}
}

func TestAddProgressNote(t *testing.T) {
	accounts := newMockAccountStore(cliente("c1", "ana@x.com", account.EstadoActivo))
	ps := &mockProgressStore{}
	deps := AddProgressNoteDeps{AccountStore: accounts, ProgressStore: ps, GenerateID: seqIDs(), Now: fixedNow}
	ctx := context.Background()

	if _, err := ExecuteAddProgressNote(ctx, AddProgressNoteInput{Actor: actor, ClientID: "c1", Note: "   "}, deps); !errors.Is(err, progress.ErrEmptyNote) {
		t.Errorf("blank note err = %v, want ErrEmptyNote", err)
	}
	if _, err := ExecuteAddProgressNote(ctx, AddProgressNoteInput{Actor: actor, ClientID: "ghost", Note: "hola"}, deps); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown client err = %v, want ErrNotFound", err)
	}
	n, err := ExecuteAddProgressNote(ctx, AddProgressNoteInput{Actor: actor, ClientID: "c1", Note: "Buen mes"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.UserID != "c1" || !n.CreatedAt.Equal(fixedTime) {
		t.Errorf("note = %+v", n)
	}
	if len(ps.notes) != 1 {
		t.Errorf("notes = %d, want 1", len(ps.notes))
	}
}

// TestSavePlan_ReplacesContent verifies two saves leave the latest content and timestamp.
func TestSavePlan_ReplacesContent(t *testing.T) {
	accounts := newMockAccountStore(cliente("c1", "ana@x.com", account.EstadoActivo))
	diets := newMockPlanStore()
	trainings := newMockPlanStore()
	now := fixedTime
	deps := SavePlanDeps{
		AccountStore:  accounts,
		DietStore:     diets,
		TrainingStore: trainings,
		Now:           func() time.Time { return now },
	}
	ctx := context.Background()

	if _, err := ExecuteSavePlan(ctx, SavePlanInput{Actor: actor, ClientID: "c1", Kind: plan.KindDiet, Content: "Avena"}, deps); err != nil {
		t.Fatalf("first save: %v", err)
	}
	now = fixedTime.Add(time.Hour)
	if _, err := ExecuteSavePlan(ctx, SavePlanInput{Actor: actor, ClientID: "c1", Kind: plan.KindDiet, Content: "Huevos"}, deps); err != nil {
		t.Fatalf("second save: %v", err)
	}

	if len(diets.plans) != 1 {
		t.Fatalf("diet rows = %d, want 1", len(diets.plans))
	}
	got := diets.plans["c1"]
	if got.Content != "Huevos" || !got.UpdatedAt.Equal(now) {
		t.Errorf("plan = %+v, want latest content and timestamp", got)
	}
	if len(trainings.plans) != 0 {
		t.Error("training store should be untouched")
	}
}

func TestSavePlan_Errors(t *testing.T) {
	accounts := newMockAccountStore(cliente("c1", "ana@x.com", account.EstadoActivo), adminUser("a2"))
	deps := SavePlanDeps{AccountStore: accounts, DietStore: newMockPlanStore(), TrainingStore: newMockPlanStore(), Now: fixedNow}
	tests := []struct {
		name  string
		input SavePlanInput
		want  error
	}{
		{"empty content", SavePlanInput{ClientID: "c1", Kind: plan.KindTraining, Content: " \n "}, plan.ErrEmptyContent},
		{"bad kind", SavePlanInput{ClientID: "c1", Kind: "cardio", Content: "x"}, plan.ErrInvalidKind},
		{"admin target", SavePlanInput{ClientID: "a2", Kind: plan.KindDiet, Content: "x"}, ErrNotFound},
		{"unknown target", SavePlanInput{ClientID: "nope", Kind: plan.KindDiet, Content: "x"}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.Actor = actor
			if _, err := ExecuteSavePlan(context.Background(), tt.input, deps); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestCreateClient_Estado verifies invalid estado input defaults to pendiente.
func TestCreateClient_Estado(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"bogus", account.EstadoPendiente},
		{"", account.EstadoPendiente},
		{"activo", account.EstadoActivo},
		{" ACTIVO ", account.EstadoActivo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			store := newMockAccountStore()
			u, err := ExecuteCreateClient(context.Background(), CreateClientInput{
				Actor: actor, Name: "Ana", Email: "ana@x.com", Password: "pw1", Estado: tt.in,
			}, CreateClientDeps{AccountStore: store, GenerateID: seqIDs(), Now: fixedNow})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store.users[u.ID].Estado != tt.want {
				t.Errorf("stored estado = %s, want %s", store.users[u.ID].Estado, tt.want)
			}
			if u.Role != account.RoleCliente {
				t.Errorf("role = %s, want cliente", u.Role)
			}
		})
	}
}

func TestCreateClient_DuplicateEmail(t *testing.T) {
	store := newMockAccountStore(cliente("c1", "ana@x.com", account.EstadoActivo))
	_, err := ExecuteCreateClient(context.Background(), CreateClientInput{
		Actor: actor, Name: "Ana", Email: "ANA@x.com", Password: "pw1",
	}, CreateClientDeps{AccountStore: store, GenerateID: seqIDs(), Now: fixedNow})
	if !errors.Is(err, account.ErrDuplicateEmail) {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestUpdateClient(t *testing.T) {
	ctx := context.Background()

	t.Run("edits fields and promotes estado", func(t *testing.T) {
		store := newMockAccountStore(cliente("c1", "ana@x.com", account.EstadoPendiente))
		mailer := &mockMailer{}
		u, err := ExecuteUpdateClient(ctx, UpdateClientInput{
			Actor: actor, ClientID: "c1", Name: "Ana María", Email: "AnaMaria@x.com", Estado: "activo",
		}, UpdateClientDeps{AccountStore: store, Mailer: mailer})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		stored := store.users["c1"]
		if stored.Name != "Ana María" || stored.Email != "anamaria@x.com" || stored.Estado != account.EstadoActivo {
			t.Errorf("stored = %+v", stored)
		}
		if u.Estado != account.EstadoActivo {
			t.Errorf("returned estado = %s", u.Estado)
		}
		if len(mailer.sent) != 1 {
			t.Errorf("activation notices = %d, want 1", len(mailer.sent))
		}
	})

	t.Run("never demotes", func(t *testing.T) {
		store := newMockAccountStore(cliente("c1", "ana@x.com", account.EstadoActivo))
		_, err := ExecuteUpdateClient(ctx, UpdateClientInput{
			Actor: actor, ClientID: "c1", Name: "Ana", Email: "ana@x.com", Estado: "pendiente",
		}, UpdateClientDeps{AccountStore: store})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.users["c1"].Estado != account.EstadoActivo {
			t.Error("activo must not move back to pendiente")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		store := newMockAccountStore(cliente("c1", "ana@x.com", account.EstadoActivo), cliente("c2", "bea@x.com", account.EstadoActivo))
		_, err := ExecuteUpdateClient(ctx, UpdateClientInput{
			Actor: actor, ClientID: "c2", Name: "Bea", Email: "ana@x.com",
		}, UpdateClientDeps{AccountStore: store})
		if !errors.Is(err, account.ErrDuplicateEmail) {
			t.Errorf("err = %v, want ErrDuplicateEmail", err)
		}
	})

	t.Run("keeping own email is allowed", func(t *testing.T) {
		store := newMockAccountStore(cliente("c1", "ana@x.com", account.EstadoActivo))
		if _, err := ExecuteUpdateClient(ctx, UpdateClientInput{
			Actor: actor, ClientID: "c1", Name: "Ana B", Email: "ana@x.com",
		}, UpdateClientDeps{AccountStore: store}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("admin target is not found", func(t *testing.T) {
		store := newMockAccountStore(adminUser("a2"))
		_, err := ExecuteUpdateClient(ctx, UpdateClientInput{
			Actor: actor, ClientID: "a2", Name: "X", Email: "x@x.com",
		}, UpdateClientDeps{AccountStore: store})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
		if store.users["a2"].Name != "Admin" {
			t.Error("admin must not be modified")
		}
	})
}

func TestDeleteClient(t *testing.T) {
	store := newMockAccountStore(cliente("c1", "ana@x.com", account.EstadoActivo), adminUser("a2"))
	rec := &mockAudit{}
	deps := DeleteClientDeps{AccountStore: store, Audit: rec}
	ctx := context.Background()

	if err := ExecuteDeleteClient(ctx, DeleteClientInput{Actor: actor, ClientID: "a2"}, deps); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete admin err = %v, want ErrNotFound", err)
	}
	if err := ExecuteDeleteClient(ctx, DeleteClientInput{Actor: actor, ClientID: "c1"}, deps); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.users["c1"]; ok {
		t.Error("client should be gone")
	}
	if err := ExecuteDeleteClient(ctx, DeleteClientInput{Actor: actor, ClientID: "c1"}, deps); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	if len(rec.events) != 1 || rec.events[0].Severity != audit.SeverityWarning {
		t.Errorf("audit = %+v, want one warning", rec.events)
	}
}
