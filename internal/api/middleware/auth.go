package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/WidodoTrh/api-exordium/internal/domain"
	"github.com/WidodoTrh/api-exordium/internal/service"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	UserKey   contextKey = "user"
)

// Auth resolves the access-token cookie into a user. Every request re-checks
// the session record, so sessions revoked by logout or a newer login fail
// here even while the access token itself is still within its lifetime.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.AccessTokenCookie)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] missing access token cookie")
				http.Error(w, "Not authenticated", http.StatusUnauthorized)
				return
			}

			user, err := authService.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] authentication failed: %v", err)
				http.Error(w, "Not authenticated", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			ctx = context.WithValue(ctx, UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok
}
