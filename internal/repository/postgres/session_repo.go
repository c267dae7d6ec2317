package postgres

import (
	"context"
	"time"

	"github.com/WidodoTrh/api-exordium/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

// Replace deletes any existing session for the user and inserts the new one
// inside a single transaction. Concurrent logins for the same user serialize
// on the row locks taken by the delete, so the at-most-one-session invariant
// holds without application-level locking.
func (r *sessionRepository) Replace(ctx context.Context, userID uuid.UUID, sessionID, token string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.SessionRecord{}, "user_id = ?", userID).Error; err != nil {
			return err
		}

		record := &domain.SessionRecord{
			ID:        uuid.New(),
			UserID:    userID,
			SessionID: sessionID,
			Token:     token,
			ExpiresAt: expiresAt,
			CreatedAt: time.Now(),
		}
		return tx.Create(record).Error
	})
}

func (r *sessionRepository) FindByUserAndToken(ctx context.Context, userID uuid.UUID, token string) (*domain.SessionRecord, error) {
	var record domain.SessionRecord
	err := r.db.WithContext(ctx).First(&record, "user_id = ? AND token = ?", userID, token).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *sessionRepository) FindByUserAndSession(ctx context.Context, userID uuid.UUID, sessionID string) (*domain.SessionRecord, error) {
	var record domain.SessionRecord
	err := r.db.WithContext(ctx).First(&record, "user_id = ? AND session_id = ?", userID, sessionID).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *sessionRepository) DeleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Delete(&domain.SessionRecord{}, "token = ?", token).Error
}
