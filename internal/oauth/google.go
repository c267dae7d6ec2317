package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrExchangeFailed = errors.New("authorization code exchange failed")
	ErrProfileFailed  = errors.New("userinfo request failed")
)

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
}

// Profile is the subset of the provider's userinfo payload this system uses.
// Raw keeps the full response body for storage.
type Profile struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`

	Raw json.RawMessage `json:"-"`
}

// GoogleClient talks to the provider's token and userinfo endpoints. The
// embedded client carries the request timeout; a slow provider fails the
// request instead of hanging it.
type GoogleClient struct {
	cfg        Config
	httpClient *http.Client
}

func NewGoogleClient(cfg Config, timeout time.Duration) *GoogleClient {
	return &GoogleClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// AuthCodeURL builds the consent-screen URL the login endpoint redirects to.
func (c *GoogleClient) AuthCodeURL() string {
	query := url.Values{}
	query.Set("client_id", c.cfg.ClientID)
	query.Set("redirect_uri", c.cfg.RedirectURI)
	query.Set("response_type", "code")
	query.Set("scope", "openid email profile")
	return c.cfg.AuthURL + "?" + query.Encode()
}

// Exchange trades an authorization code for a provider access token.
func (c *GoogleClient) Exchange(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("redirect_uri", c.cfg.RedirectURI)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload struct {
		AccessToken      string `json:"access_token"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if payload.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrExchangeFailed, payload.Error)
	}
	if resp.StatusCode != http.StatusOK || payload.AccessToken == "" {
		return "", ErrExchangeFailed
	}

	return payload.AccessToken, nil
}

// Profile fetches the userinfo document for a provider access token.
func (c *GoogleClient) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrProfileFailed
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFailed, err)
	}

	profile := &Profile{}
	if err := json.Unmarshal(body, profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFailed, err)
	}
	profile.Raw = body

	return profile, nil
}
