package impl

import (
	"context"
	"errors"

	"signupflow/internal/domain"
	"signupflow/internal/store"

	"github.com/google/uuid"
)

// The services depend on these narrow interfaces rather than the concrete
// gorm store, so tests can plug in an in-memory implementation.

type dataStore interface {
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
}

type storeTx interface {
	Accounts() accountStore
	Sessions() sessionStore
}

type accountStore interface {
	Create(ctx context.Context, acc *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, acc *domain.Account) error
}

type sessionStore interface {
	Create(ctx context.Context, sess *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type gormStoreAdapter struct {
	store *store.Store
}

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	if g.store == nil {
		return errors.New("nil store")
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormTxAdapter{tx: tx})
	})
}

type gormTxAdapter struct {
	tx *store.Store
}

func (g gormTxAdapter) Accounts() accountStore { return g.tx.Accounts() }

func (g gormTxAdapter) Sessions() sessionStore { return g.tx.Sessions() }
