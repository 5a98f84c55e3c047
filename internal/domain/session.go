package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record behind a login token. The token a client
// holds only names the session; this row decides whether it is still good.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;index"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	IP        string    `gorm:"type:text"`
	UserAgent string    `gorm:"type:text"`
}

func (Session) TableName() string { return "sessions" }

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
