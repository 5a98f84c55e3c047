package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered user in this service's own store, independent of any
// host platform user table. Email uniqueness is enforced by a citext unique
// index, so lookups are case-insensitive at the database level.
type Account struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName       string    `gorm:"type:text;not null" json:"fullName"`
	Email          string    `gorm:"type:citext;uniqueIndex:ux_accounts_email" json:"email"`
	PasswordHash   []byte    `gorm:"type:bytea;not null" json:"-"`
	PasswordSalt   []byte    `gorm:"type:bytea;not null" json:"-"`
	PasswordParams []byte    `gorm:"type:jsonb" json:"-"`
	PasswordAlgo   string    `gorm:"type:text" json:"-"`
	PasswordVer    int       `gorm:"not null;default:1" json:"-"`
	PhoneNumber    string    `gorm:"type:text" json:"phoneNumber"`
	Country        string    `gorm:"type:text" json:"country"`
	City           string    `gorm:"type:text" json:"city"`
	Gender         string    `gorm:"type:text" json:"gender"`
	DateOfBirth    string    `gorm:"type:text" json:"dateOfBirth"`
	Interests      []string  `gorm:"serializer:json;type:jsonb" json:"interests"`
	ProfilePhoto   string    `gorm:"type:text" json:"profilePhoto"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null" json:"updatedAt"`
}

func (Account) TableName() string { return "accounts" }

// Summary is the outward-facing view of an Account. It never carries password
// material.
type Summary struct {
	ID           string   `json:"id"`
	FullName     string   `json:"fullName"`
	Email        string   `json:"email"`
	PhoneNumber  string   `json:"phoneNumber"`
	Country      string   `json:"country"`
	City         string   `json:"city,omitempty"`
	Gender       string   `json:"gender,omitempty"`
	DateOfBirth  string   `json:"dateOfBirth,omitempty"`
	Interests    []string `json:"interests"`
	ProfilePhoto string   `json:"profilePhoto,omitempty"`
}

func (a *Account) Summarize() Summary {
	return Summary{
		ID:           a.ID.String(),
		FullName:     a.FullName,
		Email:        a.Email,
		PhoneNumber:  a.PhoneNumber,
		Country:      a.Country,
		City:         a.City,
		Gender:       a.Gender,
		DateOfBirth:  a.DateOfBirth,
		Interests:    a.Interests,
		ProfilePhoto: a.ProfilePhoto,
	}
}
