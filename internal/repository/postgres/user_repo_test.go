package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/WidodoTrh/api-exordium/internal/domain"
	"github.com/WidodoTrh/api-exordium/internal/repository/postgres"
	"github.com/WidodoTrh/api-exordium/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	googleID := "g-111"

	tests := []struct {
		name    string
		user    *domain.User
		wantErr bool
	}{
		{
			name: "successful creation",
			user: &domain.User{
				ID:        uuid.New(),
				Email:     "first@example.com",
				Name:      "First",
				GoogleID:  &googleID,
				CreatedAt: time.Now(),
			},
			wantErr: false,
		},
		{
			name: "duplicate email",
			user: &domain.User{
				ID:        uuid.New(),
				Email:     "first@example.com", // Same as above
				Name:      "Second",
				CreatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "duplicate google id",
			user: &domain.User{
				ID:        uuid.New(),
				Email:     "third@example.com",
				GoogleID:  &googleID, // Same as above
				CreatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "no google id is allowed repeatedly",
			user: &domain.User{
				ID:        uuid.New(),
				Email:     "fourth@example.com",
				CreatedAt: time.Now(),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUserRepository_Lookups(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithEmail("lookup@example.com").
		WithGoogleID("g-222").
		Build(t, testDB.DB)

	t.Run("by id", func(t *testing.T) {
		found, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, found.Email)

		_, err = repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("by email", func(t *testing.T) {
		found, err := repo.GetByEmail(ctx, "lookup@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		_, err = repo.GetByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("by google id", func(t *testing.T) {
		found, err := repo.GetByGoogleID(ctx, "g-222")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		_, err = repo.GetByGoogleID(ctx, "g-404")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestUserRepository_UpdateAndDelete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithEmail("mutate@example.com").Build(t, testDB.DB)

	now := time.Now()
	user.Name = "Renamed"
	user.LastLoginAt = &now
	require.NoError(t, repo.Update(ctx, user))

	found, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Name)
	require.NotNil(t, found.LastLoginAt)

	require.NoError(t, repo.Delete(ctx, user.ID))
	_, err = repo.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCredentialRepository_Upsert(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewCredentialRepository(testDB.DB)
	ctx := context.Background()

	userID := uuid.New()

	require.NoError(t, repo.Upsert(ctx, &domain.PasswordCredential{
		UserID:       userID,
		PasswordHash: "hash-1",
	}))

	first, err := repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "hash-1", first.PasswordHash)

	require.NoError(t, repo.Upsert(ctx, &domain.PasswordCredential{
		UserID:       userID,
		PasswordHash: "hash-2",
	}))

	second, err := repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "hash-2", second.PasswordHash)
	assert.Equal(t, first.ID, second.ID, "upsert must keep the one-to-one row")
	assert.False(t, second.LastChangedAt.Before(first.LastChangedAt))

	var count int64
	require.NoError(t, testDB.DB.Model(&domain.PasswordCredential{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
