package testutil

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/WidodoTrh/api-exordium/internal/domain"
	"github.com/WidodoTrh/api-exordium/internal/oauth"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email    string
	name     string
	password string
	googleID string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email: fmt.Sprintf("testuser_%s@example.com", uuid.New().String()[:8]),
		name:  "Test User",
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithName sets the display name
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

// WithPassword gives the user a password credential record
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithGoogleID sets the external provider subject id
func (b *UserBuilder) WithGoogleID(googleID string) *UserBuilder {
	b.googleID = googleID
	return b
}

// Build creates the user (and credential, when a password was set) in the
// database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	user := &domain.User{
		ID:        uuid.New(),
		Email:     b.email,
		Name:      b.name,
		CreatedAt: time.Now(),
	}
	if b.googleID != "" {
		user.GoogleID = &b.googleID
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if b.password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		credential := &domain.PasswordCredential{
			ID:            uuid.New(),
			UserID:        user.ID,
			PasswordHash:  string(hash),
			CreatedAt:     time.Now(),
			LastChangedAt: time.Now(),
		}
		if err := db.Create(credential).Error; err != nil {
			t.Fatalf("failed to create credential: %v", err)
		}
	}

	return user, b.password
}

// EncryptPassword produces the base64 RSA blob a browser would send
func EncryptPassword(t *testing.T, pub *rsa.PublicKey, password string) string {
	t.Helper()

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(password))
	if err != nil {
		t.Fatalf("failed to encrypt password: %v", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext)
}

// FakeProvider is an in-memory stand-in for the upstream identity provider
type FakeProvider struct {
	ExchangeErr error
	ProfileErr  error
	Profiles    map[string]*oauth.Profile // code -> profile
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{Profiles: make(map[string]*oauth.Profile)}
}

// AddProfile registers a profile for an authorization code
func (p *FakeProvider) AddProfile(code string, profile *oauth.Profile) {
	if profile.Raw == nil {
		raw, _ := json.Marshal(profile)
		profile.Raw = raw
	}
	p.Profiles[code] = profile
}

func (p *FakeProvider) AuthCodeURL() string {
	return "https://provider.example.com/consent"
}

func (p *FakeProvider) Exchange(ctx context.Context, code string) (string, error) {
	if p.ExchangeErr != nil {
		return "", p.ExchangeErr
	}
	if _, ok := p.Profiles[code]; !ok {
		return "", oauth.ErrExchangeFailed
	}
	// The code doubles as the provider access token
	return code, nil
}

func (p *FakeProvider) Profile(ctx context.Context, accessToken string) (*oauth.Profile, error) {
	if p.ProfileErr != nil {
		return nil, p.ProfileErr
	}
	profile, ok := p.Profiles[accessToken]
	if !ok {
		return nil, oauth.ErrProfileFailed
	}
	return profile, nil
}

// TimeoutError mimics a timed-out provider call
type TimeoutError struct{}

func (TimeoutError) Error() string   { return "dial tcp: i/o timeout" }
func (TimeoutError) Timeout() bool   { return true }
func (TimeoutError) Temporary() bool { return true }
