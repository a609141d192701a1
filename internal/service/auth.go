package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"saas-billing/internal/apperr"
	"saas-billing/internal/auth"
	"saas-billing/internal/model"
	"saas-billing/internal/repository"
	"time"

	"golang.org/x/oauth2"
)

// CodeExchanger trades an identity provider auth code for a verified session.
type CodeExchanger interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, *auth.User, error)
}

type AuthService interface {
	CompleteSignIn(ctx context.Context, code, locale string) (*oauth2.Token, *auth.User, error)
	IssueNonce(ctx context.Context) (string, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
}

type authServiceImpl struct {
	exchanger CodeExchanger
	userRepo  repository.UserRepository
	nonceRepo repository.NonceRepository
	nonceTTL  time.Duration
}

func NewAuthService(exchanger CodeExchanger, userRepo repository.UserRepository, nonceRepo repository.NonceRepository, nonceTTL time.Duration) AuthService {
	return &authServiceImpl{
		exchanger: exchanger,
		userRepo:  userRepo,
		nonceRepo: nonceRepo,
		nonceTTL:  nonceTTL,
	}
}

func (s *authServiceImpl) CompleteSignIn(ctx context.Context, code, locale string) (*oauth2.Token, *auth.User, error) {
	if code == "" {
		return nil, nil, apperr.Validation("missing auth code")
	}

	token, user, err := s.exchanger.Exchange(ctx, code)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindUnauthorized, "sign-in failed", err)
	}

	now := time.Now()
	if err := s.userRepo.Upsert(ctx, &model.User{
		ID:           user.ID,
		Email:        user.Email,
		Locale:       locale,
		LastSignInAt: &now,
	}); err != nil {
		return nil, nil, fmt.Errorf("upsert user: %w", err)
	}
	return token, user, nil
}

func (s *authServiceImpl) IssueNonce(ctx context.Context) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(buf)

	if err := s.nonceRepo.Put(ctx, nonce, s.nonceTTL); err != nil {
		return "", fmt.Errorf("store nonce: %w", err)
	}
	return nonce, nil
}

func (s *authServiceImpl) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return user, nil
}
