package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testIssuer   = "https://project.identity.test/auth/v1"
	testAudience = "authenticated"
)

func TestVerifierValidToken(t *testing.T) {
	verifier, key := newTestVerifier(t)
	tokenString := signToken(t, key, "test-key", testIssuer, testAudience, time.Now().Add(10*time.Minute))

	user, err := verifier.Verify(tokenString)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.ID != "user-123" || user.Email != "user@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestVerifierRejectsForeignKey(t *testing.T) {
	verifier, _ := newTestVerifier(t)

	badKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to create key: %v", err)
	}
	tokenString := signToken(t, badKey, "test-key", testIssuer, testAudience, time.Now().Add(10*time.Minute))

	if _, err := verifier.Verify(tokenString); err == nil {
		t.Fatal("expected verification error")
	}
}

func TestVerifierRejectsWrongAudience(t *testing.T) {
	verifier, key := newTestVerifier(t)
	tokenString := signToken(t, key, "test-key", testIssuer, "someone-else", time.Now().Add(10*time.Minute))

	if _, err := verifier.Verify(tokenString); err == nil {
		t.Fatal("expected audience error")
	}
}

func TestVerifierRejectsExpired(t *testing.T) {
	verifier, key := newTestVerifier(t)
	tokenString := signToken(t, key, "test-key", testIssuer, testAudience, time.Now().Add(-time.Hour))

	if _, err := verifier.Verify(tokenString); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestSessionUserFromHeaderAndCookie(t *testing.T) {
	sessions := NewSessionAccessor(VerifierFunc(func(token string) (*User, error) {
		if token != "good" {
			return nil, errors.New("bad token")
		}
		return &User{ID: "user-1"}, nil
	}), SessionConfig{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	if user, err := sessions.User(req); err != nil || user.ID != "user-1" {
		t.Fatalf("expected header session, got %v %v", user, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "good"})
	if user, err := sessions.User(req); err != nil || user.ID != "user-1" {
		t.Fatalf("expected cookie session, got %v %v", user, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := sessions.User(req); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	if _, err := sessions.User(req); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for bad token, got %v", err)
	}
}

func TestSessionExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "auth-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"good","refresh_token":"refresh","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(server.Close)

	sessions := NewSessionAccessor(VerifierFunc(func(token string) (*User, error) {
		return &User{ID: "user-1"}, nil
	}), SessionConfig{ClientID: "id", ClientSecret: "secret", TokenURL: server.URL})

	token, user, err := sessions.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if token.RefreshToken != "refresh" || user.ID != "user-1" {
		t.Fatalf("unexpected exchange result %+v %+v", token, user)
	}

	rec := httptest.NewRecorder()
	sessions.SetSessionCookies(rec, token)
	if len(rec.Result().Cookies()) != 2 {
		t.Fatalf("expected two session cookies, got %d", len(rec.Result().Cookies()))
	}

	if _, _, err := sessions.Exchange(context.Background(), "wrong"); err == nil {
		t.Fatal("expected exchange error")
	}
}

func TestExtractBearerToken(t *testing.T) {
	token, ok := extractBearerToken("Bearer abc")
	if !ok || token != "abc" {
		t.Fatalf("expected token")
	}
	if _, ok := extractBearerToken("Bearer"); ok {
		t.Fatalf("expected invalid header")
	}
	if _, ok := extractBearerToken("Token abc"); ok {
		t.Fatalf("expected invalid scheme")
	}
}

func TestUserFromContext(t *testing.T) {
	ctx := WithUser(context.Background(), &User{ID: "user-1"})
	got, ok := UserFromContext(ctx)
	if !ok || got.ID != "user-1" {
		t.Fatalf("expected user from context")
	}
	if _, ok := UserFromContext(context.Background()); ok {
		t.Fatal("expected no user")
	}
}

func newTestVerifier(t *testing.T) (*Verifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to create key: %v", err)
	}

	jwks := newJWKS(key, "test-key")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	verifier, err := NewVerifier(ctx, testIssuer, testAudience, server.URL)
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}
	return verifier, key
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid, issuer, audience string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss":   issuer,
		"aud":   audience,
		"sub":   "user-123",
		"email": "user@example.com",
		"exp":   expiresAt.Unix(),
		"iat":   time.Now().Add(-time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	tokenString, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return tokenString
}

type jwksPayload struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func newJWKS(key *rsa.PrivateKey, kid string) jwksPayload {
	n := base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes())
	return jwksPayload{
		Keys: []jwkKey{
			{
				Kty: "RSA",
				Kid: kid,
				Use: "sig",
				Alg: "RS256",
				N:   n,
				E:   e,
			},
		},
	}
}
