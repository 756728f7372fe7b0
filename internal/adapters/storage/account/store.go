package account

import (
	"context"

	domain "fitcoach/internal/domain/account"
)

// Store persists users. Client-scoped methods only ever match role='cliente'
// rows, so an admin can never be read or modified through them.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Insert(ctx context.Context, u domain.User) error
	CountAdmins(ctx context.Context) (int, error)

	GetClient(ctx context.Context, id string) (domain.User, error)
	ListClients(ctx context.Context) ([]domain.User, error)
	UpdateClient(ctx context.Context, u domain.User) error
	SetClientEstado(ctx context.Context, id, estado string) error
	DeleteClient(ctx context.Context, id string) error
}

var _ Store = (*SQLiteStore)(nil)
