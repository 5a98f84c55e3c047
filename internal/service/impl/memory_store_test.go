package impl

import (
	"context"
	"strings"
	"sync"

	"signupflow/internal/domain"
	"signupflow/internal/store"

	"github.com/google/uuid"
)

// memoryStore emulates the database for service tests. A single mutex spans
// each WithTx call, which mirrors what the unique index gives us in postgres:
// two transactions inserting the same email cannot interleave.
type memoryStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.Account
	emails   map[string]uuid.UUID
	sessions map[uuid.UUID]*domain.Session
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accounts: make(map[uuid.UUID]*domain.Account),
		emails:   make(map[string]uuid.UUID),
		sessions: make(map[uuid.UUID]*domain.Session),
	}
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(memoryTx{m})
}

type memoryTx struct{ m *memoryStore }

func (t memoryTx) Accounts() accountStore { return memoryAccounts{t.m} }
func (t memoryTx) Sessions() sessionStore { return memorySessions{t.m} }

type memoryAccounts struct{ m *memoryStore }

func emailKey(email string) string { return strings.ToLower(email) }

func (a memoryAccounts) Create(ctx context.Context, acc *domain.Account) error {
	key := emailKey(acc.Email)
	if _, taken := a.m.emails[key]; taken {
		return store.ErrDuplicateEmail
	}
	cp := *acc
	a.m.accounts[acc.ID] = &cp
	a.m.emails[key] = acc.ID
	return nil
}

func (a memoryAccounts) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	acc, ok := a.m.accounts[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	cp := *acc
	return &cp, nil
}

func (a memoryAccounts) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	id, ok := a.m.emails[emailKey(email)]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return a.GetByID(ctx, id)
}

func (a memoryAccounts) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := a.m.emails[emailKey(email)]
	return ok, nil
}

func (a memoryAccounts) Update(ctx context.Context, acc *domain.Account) error {
	old, ok := a.m.accounts[acc.ID]
	if !ok {
		return store.ErrRecordNotFound
	}
	newKey, oldKey := emailKey(acc.Email), emailKey(old.Email)
	if newKey != oldKey {
		if _, taken := a.m.emails[newKey]; taken {
			return store.ErrDuplicateEmail
		}
		delete(a.m.emails, oldKey)
		a.m.emails[newKey] = acc.ID
	}
	cp := *acc
	a.m.accounts[acc.ID] = &cp
	return nil
}

type memorySessions struct{ m *memoryStore }

func (s memorySessions) Create(ctx context.Context, sess *domain.Session) error {
	cp := *sess
	s.m.sessions[sess.ID] = &cp
	return nil
}

func (s memorySessions) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	sess, ok := s.m.sessions[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s memorySessions) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.m.sessions, id)
	return nil
}
