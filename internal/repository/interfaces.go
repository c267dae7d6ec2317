package repository

import (
	"context"
	"time"

	"github.com/WidodoTrh/api-exordium/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CredentialRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.PasswordCredential, error)
	Upsert(ctx context.Context, credential *domain.PasswordCredential) error
}

// SessionRepository enforces the single-active-session invariant: Replace
// atomically removes any prior record for the user before inserting the new
// one, so a failure leaves the old session intact rather than none.
type SessionRepository interface {
	Replace(ctx context.Context, userID uuid.UUID, sessionID, token string, expiresAt time.Time) error
	FindByUserAndToken(ctx context.Context, userID uuid.UUID, token string) (*domain.SessionRecord, error)
	FindByUserAndSession(ctx context.Context, userID uuid.UUID, sessionID string) (*domain.SessionRecord, error)
	DeleteByToken(ctx context.Context, token string) error
}

type Repositories struct {
	User       UserRepository
	Credential CredentialRepository
	Session    SessionRepository
}
