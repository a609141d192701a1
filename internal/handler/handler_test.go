package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"saas-billing/internal/auth"
	"saas-billing/internal/locale"
	"saas-billing/internal/model"
	"saas-billing/internal/openapi"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"
)

type stubAuthService struct {
	calls int
}

func (s *stubAuthService) CompleteSignIn(_ context.Context, code, _ string) (*oauth2.Token, *auth.User, error) {
	s.calls++
	return &oauth2.Token{AccessToken: "token-" + code}, &auth.User{ID: "alice"}, nil
}

func (s *stubAuthService) IssueNonce(context.Context) (string, error) { return "nonce", nil }

func (s *stubAuthService) Profile(context.Context, string) (*model.User, error) { return nil, nil }

type recordingSessions struct {
	token *oauth2.Token
}

func (s *recordingSessions) AuthCodeURL(state string) string {
	return "https://idp.example/authorize?state=" + state
}

func (s *recordingSessions) SetSessionCookies(_ http.ResponseWriter, token *oauth2.Token) {
	s.token = token
}

func (s *recordingSessions) ClearSessionCookies(http.ResponseWriter) {}

func TestSafeRedirect(t *testing.T) {
	cases := []struct {
		next string
		ok   bool
	}{
		{"/en/orders", true},
		{"/zh/checkout?plan=pro_monthly", true},
		{"", false},
		{"orders", false},
		{"//evil.example/path", false},
		{`/\evil.example`, false},
		{"https://evil.example/", false},
	}
	for _, tc := range cases {
		got, ok := safeRedirect(tc.next)
		if ok != tc.ok {
			t.Fatalf("safeRedirect(%q) ok = %v, want %v", tc.next, ok, tc.ok)
		}
		if ok && got != tc.next {
			t.Fatalf("safeRedirect(%q) = %q", tc.next, got)
		}
	}
}

func TestDocsHandler(t *testing.T) {
	e := echo.New()
	h := NewDocsHandler(openapi.Build("https://app.example", "test"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/docs?format=yaml", nil)
	rec := httptest.NewRecorder()
	if err := h.Get(e.NewContext(req, rec)); err != nil {
		t.Fatalf("docs: %v", err)
	}
	if rec.Header().Get(echo.HeaderContentType) != "application/yaml" {
		t.Fatalf("unexpected content type %q", rec.Header().Get(echo.HeaderContentType))
	}
	if !strings.Contains(rec.Body.String(), "/api/v1/payments/orders/{id}") {
		t.Fatalf("expected order route in document")
	}
}

func TestCurrentUserRequiresSession(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if _, err := currentUser(c); err == nil {
		t.Fatal("expected unauthorized error")
	}
}

func TestAuthCallbackState(t *testing.T) {
	cases := []struct {
		name     string
		cookie   string
		query    string
		location string
	}{
		{"missing cookie", "", "?code=c1&state=s1", "/en/login?error=auth"},
		{"missing state", "s1|", "?code=c1", "/en/login?error=auth"},
		{"state mismatch", "s1|", "?code=c1&state=s2", "/en/login?error=auth"},
		{"empty cookie state", "|", "?code=c1&state=", "/en/login?error=auth"},
		{"matching state", "s1|%2Fen%2Forders", "?code=c1&state=s1", "/en/orders"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			authService := &stubAuthService{}
			sessions := &recordingSessions{}
			h := NewAuthHandler(authService, sessions, locale.NewResolver([]string{"en", "zh"}, "en"), false)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/callback"+tc.query, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: stateCookie, Value: tc.cookie})
			}
			rec := httptest.NewRecorder()
			if err := h.Callback(echo.New().NewContext(req, rec)); err != nil {
				t.Fatalf("callback: %v", err)
			}

			if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != tc.location {
				t.Fatalf("expected redirect to %s, got %d %s", tc.location, rec.Code, rec.Header().Get(echo.HeaderLocation))
			}
			signedIn := tc.location == "/en/orders"
			if signedIn != (sessions.token != nil) || signedIn != (authService.calls == 1) {
				t.Fatalf("expected signed in = %v, got token %v after %d exchanges", signedIn, sessions.token, authService.calls)
			}
		})
	}
}
