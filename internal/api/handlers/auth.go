package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/WidodoTrh/api-exordium/internal/api/middleware"
	"github.com/WidodoTrh/api-exordium/internal/service"
)

type AuthHandler struct {
	authService  *service.AuthService
	tokenService *service.TokenService
}

func NewAuthHandler(authService *service.AuthService, tokenService *service.TokenService) *AuthHandler {
	return &AuthHandler{authService: authService, tokenService: tokenService}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` // base64 RSA-encrypted blob
}

type GoogleCallbackRequest struct {
	Code string `json:"code"`
}

type LoginResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// LoginRedirect sends the browser to the provider consent screen.
func (h *AuthHandler) LoginRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.authService.ConsentURL(), http.StatusFound)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	result, err := h.authService.PasswordLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEncryptedPayload):
			http.Error(w, "Invalid encrypted payload", http.StatusBadRequest)
		case errors.Is(err, service.ErrInvalidCredentials):
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		default:
			log.Printf("ERROR [AuthHandler.Login] %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	if err := h.tokenService.AttachCookies(w, result.Tokens); err != nil {
		log.Printf("ERROR [AuthHandler.Login] attach cookies: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Message: "Login succeed",
		User:    toUserResponse(result.User),
	})
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	var req GoogleCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Code == "" {
		http.Error(w, "Missing code", http.StatusBadRequest)
		return
	}

	result, err := h.authService.GoogleLogin(r.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUpstreamTimeout):
			log.Printf("ERROR [AuthHandler.GoogleCallback] provider timeout")
			http.Error(w, "Identity provider timed out", http.StatusBadGateway)
		case errors.Is(err, service.ErrIdentityProvider):
			http.Error(w, "Identity provider error", http.StatusBadRequest)
		default:
			// Provider internals never reach the client.
			log.Printf("ERROR [AuthHandler.GoogleCallback] %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	if err := h.tokenService.AttachCookies(w, result.Tokens); err != nil {
		log.Printf("ERROR [AuthHandler.GoogleCallback] attach cookies: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Message: "Login successful",
		User:    toUserResponse(result.User),
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(service.RefreshTokenCookie)
	if err != nil {
		http.Error(w, "Missing refresh token", http.StatusBadRequest)
		return
	}

	result, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRefreshToken):
			http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
		case errors.Is(err, service.ErrSessionNotFound):
			http.Error(w, "Session invalid or expired", http.StatusUnauthorized)
		default:
			log.Printf("ERROR [AuthHandler.Refresh] %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	if err := h.tokenService.AttachCookies(w, result.Tokens); err != nil {
		log.Printf("ERROR [AuthHandler.Refresh] attach cookies: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(result.Tokens.AccessTTL.Seconds()),
	})
}

// Logout always succeeds: revoking an already-gone session is a no-op.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken := ""
	if cookie, err := r.Cookie(service.RefreshTokenCookie); err == nil {
		refreshToken = cookie.Value
	}

	if err := h.authService.Logout(r.Context(), refreshToken); err != nil {
		log.Printf("ERROR [AuthHandler.Logout] %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.tokenService.ClearCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged Out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
