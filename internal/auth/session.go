package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	AccessTokenCookie  = "sb-access-token"
	RefreshTokenCookie = "sb-refresh-token"
)

var ErrNoSession = errors.New("no session")

// SessionAccessor reads the current session from a request and exchanges auth codes
// with the hosted identity provider.
type SessionAccessor struct {
	verifier     TokenVerifier
	oauth        *oauth2.Config
	cookieSecure bool
}

type SessionConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	CookieSecure bool
}

func NewSessionAccessor(verifier TokenVerifier, cfg SessionConfig) *SessionAccessor {
	return &SessionAccessor{
		verifier: verifier,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		cookieSecure: cfg.CookieSecure,
	}
}

// User returns the verified user for the request, or ErrNoSession.
func (s *SessionAccessor) User(r *http.Request) (*User, error) {
	token, ok := extractBearerToken(r.Header.Get("Authorization"))
	if !ok {
		cookie, err := r.Cookie(AccessTokenCookie)
		if err != nil || cookie.Value == "" {
			return nil, ErrNoSession
		}
		token = cookie.Value
	}

	if s.verifier == nil {
		return nil, fmt.Errorf("%w: verifier not configured", ErrNoSession)
	}

	user, err := s.verifier.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	return user, nil
}

// AuthCodeURL is where the login page sends the browser.
func (s *SessionAccessor) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// Exchange trades an auth code for provider tokens and verifies the access token.
func (s *SessionAccessor) Exchange(ctx context.Context, code string) (*oauth2.Token, *User, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("exchange auth code: %w", err)
	}
	if s.verifier == nil {
		return nil, nil, errors.New("verifier not configured")
	}
	user, err := s.verifier.Verify(token.AccessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("verify access token: %w", err)
	}
	return token, user, nil
}

// SetSessionCookies stores provider tokens as http-only cookies.
func (s *SessionAccessor) SetSessionCookies(w http.ResponseWriter, token *oauth2.Token) {
	maxAge := int(time.Until(token.Expiry).Seconds())
	if token.Expiry.IsZero() || maxAge <= 0 {
		maxAge = int(time.Hour.Seconds())
	}
	http.SetCookie(w, s.cookie(AccessTokenCookie, token.AccessToken, maxAge))
	if token.RefreshToken != "" {
		http.SetCookie(w, s.cookie(RefreshTokenCookie, token.RefreshToken, int((30*24*time.Hour).Seconds())))
	}
}

func (s *SessionAccessor) ClearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie(AccessTokenCookie, "", -1))
	http.SetCookie(w, s.cookie(RefreshTokenCookie, "", -1))
}

func (s *SessionAccessor) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func extractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
