package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/WidodoTrh/api-exordium/internal/config"
	"github.com/WidodoTrh/api-exordium/internal/repository"
	"github.com/WidodoTrh/api-exordium/internal/token"
	"github.com/google/uuid"
)

// Cookie and header names are part of the client contract and must not change.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	CSRFCookie         = "XSRF-TOKEN"
	CSRFHeader         = "X-CSRF-TOKEN"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// TokenService issues access/refresh pairs and owns the cookie directives
// that deliver them. Issuing replaces the user's previous session: logging in
// on a second device logs out the first. That is a product decision, not an
// oversight.
type TokenService struct {
	codec    *token.Codec
	sessions repository.SessionRepository
	cfg      *config.Config
}

func NewTokenService(sessions repository.SessionRepository, cfg *config.Config) *TokenService {
	return &TokenService{
		codec:    token.NewCodec(cfg.JWTSecret),
		sessions: sessions,
		cfg:      cfg,
	}
}

// Issue mints a fresh access/refresh pair under a new session id and persists
// the session before returning. A refresh token is never handed out without
// its matching session row; otherwise refresh validation could never succeed.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	sessionID := uuid.New().String()

	accessToken, err := s.codec.Issue(token.KindAccess, userID.String(), sessionID, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.codec.Issue(token.KindRefresh, userID.String(), sessionID, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.cfg.RefreshTokenTTL)
	if err := s.sessions.Replace(ctx, userID, sessionID, refreshToken, expiresAt); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessTTL:    s.cfg.AccessTokenTTL,
		RefreshTTL:   s.cfg.RefreshTokenTTL,
	}, nil
}

// AttachCookies writes the token cookies plus the CSRF double-submit cookie.
// The CSRF cookie is deliberately not HttpOnly: the frontend reads it and
// mirrors it into the X-CSRF-TOKEN header.
func (s *TokenService) AttachCookies(w http.ResponseWriter, pair *TokenPair) error {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(pair.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(pair.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	csrfToken, err := randomToken(32)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookie,
		Value:    csrfToken,
		Domain:   s.cfg.CookieDomain,
		Path:     "/",
		MaxAge:   int(pair.AccessTTL.Seconds()),
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	return nil
}

// ClearCookies expires all three cookies.
func (s *TokenService) ClearCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
		})
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookie,
		Value:    "",
		Domain:   s.cfg.CookieDomain,
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func randomToken(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
