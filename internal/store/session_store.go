package store

import (
	"context"
	"time"

	"signupflow/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStore struct{ db *gorm.DB }

func (s *Store) Sessions() *SessionStore { return &SessionStore{db: s.DB} }

func (ss *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	return translate(ss.db.WithContext(ctx).Create(sess).Error)
}

func (ss *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var sess domain.Session
	if err := ss.db.WithContext(ctx).First(&sess, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &sess, nil
}

// Delete destroys a session. Deleting an absent session is not an error:
// logout is idempotent.
func (ss *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(ss.db.WithContext(ctx).Delete(&domain.Session{}, "id = ?", id).Error)
}

// DeleteExpired removes sessions whose expiry has passed. Run opportunistically;
// verify never trusts presence alone.
func (ss *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := ss.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.Session{})
	return res.RowsAffected, translate(res.Error)
}
