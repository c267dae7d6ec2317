package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	GoogleID    *string        `json:"googleId,omitempty" gorm:"uniqueIndex"`
	Email       string         `json:"email" gorm:"uniqueIndex;not null"`
	Name        string         `json:"name"`
	AvatarURL   string         `json:"avatarUrl"`
	Profile     datatypes.JSON `json:"-"` // raw provider userinfo payload
	CreatedAt   time.Time      `json:"createdAt"`
	LastLoginAt *time.Time     `json:"lastLoginAt,omitempty"`
}

// PasswordCredential is the one-to-one password record for a user. OAuth-only
// users never get one; it is created solely by the explicit set-password flow.
type PasswordCredential struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID        uuid.UUID `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	PasswordHash  string    `json:"-" gorm:"not null"`
	CreatedAt     time.Time `json:"createdAt"`
	LastChangedAt time.Time `json:"lastChangedAt"`
}

// SessionRecord is one live refresh-token session. The store keeps at most one
// row per user: every issuance replaces whatever was there before.
type SessionRecord struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	SessionID string    `json:"sessionId" gorm:"uniqueIndex;not null"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}
