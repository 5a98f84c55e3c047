package store

import (
	"context"
	"time"

	"signupflow/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountStore struct{ db *gorm.DB }

func (s *Store) Accounts() *AccountStore { return &AccountStore{db: s.DB} }

func (a *AccountStore) Create(ctx context.Context, acc *domain.Account) error {
	if acc.ID == uuid.Nil {
		acc.ID = uuid.New()
	}
	now := time.Now().UTC()
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = now
	}
	acc.UpdatedAt = now
	return translate(a.db.WithContext(ctx).Create(acc).Error)
}

func (a *AccountStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var acc domain.Account
	if err := a.db.WithContext(ctx).First(&acc, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &acc, nil
}

// GetByEmail matches case-insensitively; the email column is citext.
func (a *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var acc domain.Account
	if err := a.db.WithContext(ctx).First(&acc, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &acc, nil
}

func (a *AccountStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := a.db.WithContext(ctx).Model(&domain.Account{}).
		Where("email = ?", email).Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (a *AccountStore) Update(ctx context.Context, acc *domain.Account) error {
	acc.UpdatedAt = time.Now().UTC()
	res := a.db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", acc.ID).
		Select("*").Omit("id", "created_at").
		Updates(acc)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
