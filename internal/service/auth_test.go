package service

import (
	"context"
	"errors"
	"saas-billing/internal/apperr"
	"saas-billing/internal/auth"
	"saas-billing/internal/repository"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

type fakeExchanger struct{}

func (fakeExchanger) Exchange(_ context.Context, code string) (*oauth2.Token, *auth.User, error) {
	if code != "good" {
		return nil, nil, errors.New("invalid_grant")
	}
	return &oauth2.Token{AccessToken: "access"}, &auth.User{ID: "alice", Email: "alice@example.com"}, nil
}

func TestCompleteSignInUpsertsUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userRepo := repository.NewUserRepository(env.db)
	svc := NewAuthService(fakeExchanger{}, userRepo, &memoryNonces{nonces: map[string]time.Duration{}}, time.Minute)

	if _, _, err := svc.CompleteSignIn(ctx, "", "en"); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, _, err := svc.CompleteSignIn(ctx, "bad", "en"); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	token, user, err := svc.CompleteSignIn(ctx, "good", "zh")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if token.AccessToken != "access" || user.ID != "alice" {
		t.Fatalf("unexpected sign-in result %+v %+v", token, user)
	}

	profile, err := svc.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Locale != "zh" || profile.LastSignInAt == nil {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestIssueNonce(t *testing.T) {
	nonces := &memoryNonces{nonces: map[string]time.Duration{}}
	svc := NewAuthService(fakeExchanger{}, nil, nonces, 5*time.Minute)

	first, err := svc.IssueNonce(context.Background())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, _ := svc.IssueNonce(context.Background())
	if len(first) != 32 || first == second {
		t.Fatalf("expected distinct 32-char nonces, got %q %q", first, second)
	}
	if nonces.nonces[first] != 5*time.Minute {
		t.Fatalf("nonce stored with ttl %v", nonces.nonces[first])
	}
}
