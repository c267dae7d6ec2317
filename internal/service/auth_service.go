package service

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/WidodoTrh/api-exordium/internal/domain"
	"github.com/WidodoTrh/api-exordium/internal/oauth"
	"github.com/WidodoTrh/api-exordium/internal/repository"
	"github.com/WidodoTrh/api-exordium/internal/token"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidEncryptedPayload = errors.New("invalid encrypted payload")
	ErrWeakPassword            = errors.New("password must be at least 8 characters")
	ErrInvalidRefreshToken     = errors.New("invalid refresh token")
	ErrSessionNotFound         = errors.New("session not found")
	ErrNotAuthenticated        = errors.New("not authenticated")
	ErrIdentityProvider        = errors.New("identity provider error")
	ErrUpstreamTimeout         = errors.New("identity provider timed out")
	ErrEmailExists             = errors.New("email already registered")
	ErrUserNotFound            = errors.New("user not found")
)

// IdentityProvider is the upstream OAuth collaborator: one code exchange, one
// profile fetch, no retries.
type IdentityProvider interface {
	AuthCodeURL() string
	Exchange(ctx context.Context, code string) (string, error)
	Profile(ctx context.Context, accessToken string) (*oauth.Profile, error)
}

// PasswordDecryptor unwraps the client-side encrypted password blob.
type PasswordDecryptor interface {
	Decrypt(encoded string) (string, error)
}

type AuthService struct {
	users       repository.UserRepository
	credentials repository.CredentialRepository
	sessions    repository.SessionRepository
	tokens      *TokenService
	provider    IdentityProvider
	decryptor   PasswordDecryptor
}

func NewAuthService(repos *repository.Repositories, tokens *TokenService, provider IdentityProvider, decryptor PasswordDecryptor) *AuthService {
	return &AuthService{
		users:       repos.User,
		credentials: repos.Credential,
		sessions:    repos.Session,
		tokens:      tokens,
		provider:    provider,
		decryptor:   decryptor,
	}
}

type AuthResult struct {
	User   *domain.User
	Tokens *TokenPair
}

// ConsentURL returns the provider consent-screen URL for the login redirect.
func (s *AuthService) ConsentURL() string {
	return s.provider.AuthCodeURL()
}

// PasswordLogin verifies an email plus an encrypted password blob. Missing
// user, missing credential record, and wrong password all collapse into
// ErrInvalidCredentials so responses cannot be used to enumerate accounts.
func (s *AuthService) PasswordLogin(ctx context.Context, email, encryptedPassword string) (*AuthResult, error) {
	password, err := s.decryptor.Decrypt(encryptedPassword)
	if err != nil {
		return nil, ErrInvalidEncryptedPayload
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	credential, err := s.credentials.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.finishLogin(ctx, user)
}

// GoogleLogin exchanges an authorization code, resolves the user by the
// profile email (creating one on first login, with no password credential),
// and issues a token pair.
func (s *AuthService) GoogleLogin(ctx context.Context, code string) (*AuthResult, error) {
	providerToken, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, providerError(err)
	}

	profile, err := s.provider.Profile(ctx, providerToken)
	if err != nil {
		return nil, providerError(err)
	}
	if profile.Email == "" {
		return nil, ErrIdentityProvider
	}

	user, err := s.users.GetByEmail(ctx, profile.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user = &domain.User{
			ID:        uuid.New(),
			Email:     profile.Email,
			Name:      profile.Name,
			AvatarURL: profile.Picture,
			Profile:   datatypes.JSON(profile.Raw),
			CreatedAt: time.Now(),
		}
		if profile.Subject != "" {
			user.GoogleID = &profile.Subject
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		return s.finishLogin(ctx, user)
	}

	// Existing user (possibly password-registered): backfill provider fields.
	if user.GoogleID == nil && profile.Subject != "" {
		user.GoogleID = &profile.Subject
	}
	if user.AvatarURL == "" {
		user.AvatarURL = profile.Picture
	}
	user.Profile = datatypes.JSON(profile.Raw)

	return s.finishLogin(ctx, user)
}

// Refresh rotates a refresh token: full re-issue under a new session id, with
// the old session replaced. A token that decodes fine but whose session row
// is gone was revoked; it must be rejected even though its signature and
// expiry are still valid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.codec.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	if _, err := s.sessions.FindByUserAndToken(ctx, userID, refreshToken); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	pair, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

// Authenticate resolves an access token to a user. The session row is
// re-checked on every call so a revoked session dies immediately instead of
// coasting until the access token expires.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.tokens.codec.Verify(accessToken, token.KindAccess)
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	if claims.SessionID == "" {
		return nil, ErrNotAuthenticated
	}

	if _, err := s.sessions.FindByUserAndSession(ctx, userID, claims.SessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}

	return user, nil
}

// Logout revokes the session behind a refresh token. Idempotent: an unknown
// or empty token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.DeleteByToken(ctx, refreshToken)
}

// SetPassword creates or replaces the user's password credential.
func (s *AuthService) SetPassword(ctx context.Context, userID uuid.UUID, password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.credentials.Upsert(ctx, &domain.PasswordCredential{
		UserID:       userID,
		PasswordHash: string(hash),
	})
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) finishLogin(ctx context.Context, user *domain.User) (*AuthResult, error) {
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: pair}, nil
}

func providerError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrUpstreamTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUpstreamTimeout
	}
	return ErrIdentityProvider
}
