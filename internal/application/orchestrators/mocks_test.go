package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"fitcoach/internal/adapters/email"
	"fitcoach/internal/domain/account"
	"fitcoach/internal/domain/audit"
	"fitcoach/internal/domain/measurement"
	"fitcoach/internal/domain/plan"
	"fitcoach/internal/domain/progress"
)

func init() {
	account.HashCost = 4
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// seqIDs returns a generator yielding id-1, id-2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// mockAccountStore is an in-memory users table honouring the cliente scope.
type mockAccountStore struct {
	users   map[string]account.User
	failGet error
}

func newMockAccountStore(users ...account.User) *mockAccountStore {
	m := &mockAccountStore{users: make(map[string]account.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.User, error) {
	u, ok := m.users[id]
	if !ok {
		return account.User{}, fmt.Errorf("user not found: %w", sql.ErrNoRows)
	}
	return u, nil
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.User, error) {
	if m.failGet != nil {
		return account.User{}, m.failGet
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return account.User{}, fmt.Errorf("user not found: %w", sql.ErrNoRows)
}

func (m *mockAccountStore) Insert(_ context.Context, u account.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return account.ErrDuplicateEmail
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockAccountStore) CountAdmins(_ context.Context) (int, error) {
	n := 0
	for _, u := range m.users {
		if u.Role == account.RoleAdmin {
			n++
		}
	}
	return n, nil
}

func (m *mockAccountStore) GetClient(_ context.Context, id string) (account.User, error) {
	u, ok := m.users[id]
	if !ok || u.Role != account.RoleCliente {
		return account.User{}, fmt.Errorf("user not found: %w", sql.ErrNoRows)
	}
	return u, nil
}

func (m *mockAccountStore) UpdateClient(_ context.Context, u account.User) error {
	cur, ok := m.users[u.ID]
	if !ok || cur.Role != account.RoleCliente {
		return fmt.Errorf("client not found: %w", sql.ErrNoRows)
	}
	for id, existing := range m.users {
		if id != u.ID && existing.Email == u.Email {
			return account.ErrDuplicateEmail
		}
	}
	cur.Name, cur.Email, cur.Estado = u.Name, u.Email, u.Estado
	m.users[u.ID] = cur
	return nil
}

func (m *mockAccountStore) SetClientEstado(_ context.Context, id, estado string) error {
	cur, ok := m.users[id]
	if !ok || cur.Role != account.RoleCliente {
		return fmt.Errorf("client not found: %w", sql.ErrNoRows)
	}
	cur.Estado = estado
	m.users[id] = cur
	return nil
}

func (m *mockAccountStore) DeleteClient(_ context.Context, id string) error {
	cur, ok := m.users[id]
	if !ok || cur.Role != account.RoleCliente {
		return fmt.Errorf("client not found: %w", sql.ErrNoRows)
	}
	delete(m.users, id)
	return nil
}

type mockMeasurementStore struct {
	rows []measurement.Measurement
}

func (m *mockMeasurementStore) Insert(_ context.Context, row measurement.Measurement) error {
	m.rows = append(m.rows, row)
	return nil
}

type mockProgressStore struct {
	notes []progress.Note
}

func (m *mockProgressStore) Insert(_ context.Context, n progress.Note) error {
	m.notes = append(m.notes, n)
	return nil
}

// mockPlanStore keeps one plan per user, like the real upsert.
type mockPlanStore struct {
	plans map[string]plan.Plan
}

func newMockPlanStore() *mockPlanStore {
	return &mockPlanStore{plans: make(map[string]plan.Plan)}
}

func (m *mockPlanStore) Replace(_ context.Context, p plan.Plan) error {
	m.plans[p.UserID] = p
	return nil
}

type mockAudit struct {
	events []audit.Event
}

func (m *mockAudit) Save(_ context.Context, e audit.Event) error {
	m.events = append(m.events, e)
	return nil
}

type mockMailer struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (m *mockMailer) Send(_ context.Context, msg email.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "msg-1", nil
}

// stallingMailer blocks until the context ends, like an unreachable provider.
type stallingMailer struct{}

func (stallingMailer) Send(ctx context.Context, _ email.Message) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

var errStoreDown = errors.New("database is locked")

func cliente(id, email, estado string) account.User {
	return account.User{
		ID: id, Name: "Cliente " + id, Email: email,
		Role: account.RoleCliente, Estado: estado, CreatedAt: fixedTime,
	}
}

func adminUser(id string) account.User {
	return account.User{
		ID: id, Name: "Admin", Email: id + "@admin.x",
		Role: account.RoleAdmin, Estado: account.EstadoActivo, CreatedAt: fixedTime,
	}
}
