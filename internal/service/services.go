package service

import (
	"github.com/WidodoTrh/api-exordium/internal/config"
	"github.com/WidodoTrh/api-exordium/internal/repository"
)

type Services struct {
	Auth  *AuthService
	Token *TokenService
}

func NewServices(repos *repository.Repositories, provider IdentityProvider, decryptor PasswordDecryptor, cfg *config.Config) *Services {
	tokens := NewTokenService(repos.Session, cfg)
	return &Services{
		Auth:  NewAuthService(repos, tokens, provider, decryptor),
		Token: tokens,
	}
}
