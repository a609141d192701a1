package service

import (
	"context"
	"errors"
	"fmt"
	"saas-billing/internal/apperr"
	"saas-billing/internal/model"
	"saas-billing/internal/repository"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DemoRunCost is what one demo run spends.
const DemoRunCost = 1

const maxPromptLength = 1024

type CreditService interface {
	Balance(ctx context.Context, userID string) (int64, error)
	RunDemo(ctx context.Context, userID, prompt string) (*model.DemoUsage, error)
	History(ctx context.Context, userID string) ([]*model.DemoUsage, error)
}

type creditServiceImpl struct {
	db         *gorm.DB
	creditRepo repository.CreditRepository
	usageRepo  repository.UsageRepository
}

func NewCreditService(db *gorm.DB, creditRepo repository.CreditRepository, usageRepo repository.UsageRepository) CreditService {
	return &creditServiceImpl{
		db:         db,
		creditRepo: creditRepo,
		usageRepo:  usageRepo,
	}
}

func (s *creditServiceImpl) Balance(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, apperr.Unauthorized("authentication required")
	}
	balance, err := s.creditRepo.Balance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return balance, nil
}

// RunDemo spends credits and records the run. Nothing is recorded when the
// balance is short.
func (s *creditServiceImpl) RunDemo(ctx context.Context, userID, prompt string) (usage *model.DemoUsage, err error) {
	ctx, end := startSpan(ctx, "CreditService.RunDemo")
	defer end(&err)

	if userID == "" {
		return nil, apperr.Unauthorized("authentication required")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, apperr.Validation("prompt is required")
	}
	if len(prompt) > maxPromptLength {
		return nil, apperr.Validation(fmt.Sprintf("prompt must be at most %d bytes", maxPromptLength))
	}

	usage = &model.DemoUsage{
		ID:           uuid.NewString(),
		UserID:       userID,
		Prompt:       prompt,
		Result:       summarize(prompt),
		CreditsSpent: DemoRunCost,
		CreatedAt:    time.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.creditRepo.Spend(ctx, tx, userID, DemoRunCost, "demo"); err != nil {
			return err
		}
		return s.usageRepo.Create(ctx, tx, usage)
	})
	if errors.Is(err, repository.ErrInsufficientCredits) {
		return nil, apperr.New(apperr.KindPaymentRequired, "insufficient credits")
	}
	if err != nil {
		return nil, fmt.Errorf("run demo: %w", err)
	}
	return usage, nil
}

func (s *creditServiceImpl) History(ctx context.Context, userID string) ([]*model.DemoUsage, error) {
	usages, err := s.usageRepo.ListByUser(ctx, userID, 20)
	if err != nil {
		return nil, fmt.Errorf("list demo runs: %w", err)
	}
	return usages, nil
}

// summarize is the demo workload: word and character counts plus the prompt in title case.
func summarize(prompt string) string {
	words := strings.Fields(prompt)
	titled := make([]string, len(words))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		titled[i] = string(runes)
	}
	return fmt.Sprintf("%d words, %d characters: %s", len(words), len([]rune(prompt)), strings.Join(titled, " "))
}
