package postgres

import (
	"context"
	"time"

	"github.com/WidodoTrh/api-exordium/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *credentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.PasswordCredential, error) {
	var credential domain.PasswordCredential
	err := r.db.WithContext(ctx).First(&credential, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &credential, nil
}

// Upsert inserts or, when a credential already exists for the user, replaces
// its hash and bumps the last-changed timestamp.
func (r *credentialRepository) Upsert(ctx context.Context, credential *domain.PasswordCredential) error {
	if credential.ID == uuid.Nil {
		credential.ID = uuid.New()
	}
	now := time.Now()
	if credential.CreatedAt.IsZero() {
		credential.CreatedAt = now
	}
	credential.LastChangedAt = now

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "last_changed_at"}),
	}).Create(credential).Error
}
